package extract

import (
	"fmt"
	"strings"

	"elo-welcoming/internal/models"
)

func intakePrompt(input string) string {
	return fmt.Sprintf(`Analise a lista semi-estruturada de pessoas abaixo e converta-a em uma lista de objetos JSON.

Regras para cada objeto:
1. As chaves devem ser "nome", "idade", "celular", "acolhedor", "HouM" e "plano_de_acao".
2. Se as informações de "nome" ou "acolhedor" estiverem faltando, o "plano_de_acao" deve ser "%s".
3. Se as informações de "idade" ou "celular" estiverem faltando (mas "nome" e "acolhedor" estiverem presentes), o "plano_de_acao" deve ser "%s".
4. Se todos os dados estiverem presentes, o "plano_de_acao" deve ser "%s".
5. O campo "idade" deve ser um número inteiro. Se estiver vazio, use o valor null no JSON.
6. O campo "HouM" deve ser "H" para homem, "M" para mulher ou vazio se não for possível saber.

Retorne APENAS a lista de objetos JSON, nada mais.

Dados de Entrada:
---
%s
---
`, models.PlanDiscardTag, models.PlanIncompleteTag, models.PlanLoadTag, input)
}

func repliesPrompt(input string) string {
	var statuses strings.Builder
	for _, s := range models.KnownOutcomes {
		fmt.Fprintf(&statuses, "- %q\n", s)
	}
	return fmt.Sprintf(`Analise a resposta do acolhedor abaixo e, para cada visitante mencionado, extraia as informações em um objeto JSON.
As chaves devem ser "nome_visitante", "status_resposta" e "observacao".

Os possíveis valores para "status_resposta" são:
%s
Use "observacao" para qualquer detalhe adicional; se não houver, use null.

Resposta:
---
%s
---

Retorne APENAS uma lista de objetos JSON.
`, statuses.String(), input)
}

func welcomersPrompt(welcomersCSV, groupsCSV string) string {
	return fmt.Sprintf("Você é um especialista em processamento de dados. Sua única função é receber dois arquivos CSV e retorná-los como um único CSV formatado.\n\n"+
		"Arquivo 1 (Dados dos Acolhedores):\n(Colunas: Carimbo_de_data/hora, Nome, apelido, Nascimento, email, numero, Nome_do_lider_de_gp)\n---\n%s\n---\n\n"+
		"Arquivo 2 (Dados dos GPs):\n(Colunas: GPS_name, LÍDER_name)\n---\n%s\n---\n\n"+
		"Tarefa:\n"+
		"1. Padronize os nomes em Nome_do_lider_de_gp para o que estiver em LÍDER_name.\n"+
		"2. Gere um novo CSV com as colunas: Nome (de Nome), Apelido (de apelido), Nascimento (de Nascimento), Email (de email), Celular (de numero), GP (de LÍDER_name).\n\n"+
		"Regras de saída:\n"+
		"- NÃO inclua o cabeçalho CSV na sua resposta.\n"+
		"- NÃO inclua explicações ou qualquer texto extra.\n"+
		"- Retorne APENAS os dados CSV brutos, um acolhedor por linha, com todos os campos entre aspas.\n\n"+
		"Exemplo de saída:\n"+
		"\"John Doe\",\"Johnny\",\"1990-01-01\",\"john.doe@example.com\",\"(11) 99999-9999\",\"Rafael Ricardo\"\n",
		welcomersCSV, groupsCSV)
}
