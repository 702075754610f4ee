package whatsapp

import (
	"fmt"
	"strings"

	"elo-welcoming/internal/models"
)

// FormatPendingList renders the WhatsApp version of the notification
func FormatPendingList(welcomer models.Welcomer, visitors []models.Visitor) string {
	name := welcomer.Alias
	if name == "" {
		name = welcomer.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🙏 *Você tem novos visitantes para acolher!*\n\nOlá %s,\n\n", name)
	b.WriteString("Estes são os novos visitantes atribuídos a você para contato:\n\n")
	for i, v := range visitors {
		fmt.Fprintf(&b, "%d. *%s*", i+1, v.Name)
		if v.Age != nil {
			fmt.Fprintf(&b, ", %d anos", *v.Age)
		}
		if v.Phone != "" {
			fmt.Fprintf(&b, " - %s", v.Phone)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nDepois do contato, responda esta mensagem contando o resultado de cada visitante ")
	b.WriteString("(por exemplo: \"Ana atendeu e tem interesse\").")
	return b.String()
}
