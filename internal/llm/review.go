package llm

import (
	"context"
	"strings"
)

const reviewPromptHeader = `Voici le texte complet du contrat :`

const reviewPromptChecks = `Vérifie les points suivants :
1. Vérification des prix (différences Vega vs DB, par mode de paiement, par emplacement)
2. Conditions contractuelles (durée, dates, type de contrat)
3. Informations clients & facturation (noms, adresses, holdings)
4. Inventaire des distributeurs (modèles, localisation, association)

Compare le contrat avec les données extraites et indique toutes incohérences ou points à vérifier.
Fournis un résumé structuré.`

// Review submits the contract text plus the serialized match report to the
// anomaly reviewer. The answer is opaque free text; the call is not retried
// and a failure surfaces to the caller as-is.
func (c *Client) Review(ctx context.Context, contractText, reportJSON string) (string, error) {
	var prompt strings.Builder
	prompt.WriteString(reviewPromptHeader)
	prompt.WriteString("\n")
	prompt.WriteString(contractText)
	prompt.WriteString("\n\nVoici les données extraites et les fichiers associés (DB) :\n")
	prompt.WriteString(reportJSON)
	prompt.WriteString("\n\n")
	prompt.WriteString(reviewPromptChecks)

	body := map[string]any{
		"model": c.cfg.OpenAIModel,
		"messages": []map[string]any{
			{"role": "user", "content": prompt.String()},
		},
	}
	return c.chat(ctx, body)
}
