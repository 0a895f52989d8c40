package problemgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `Você é um elaborador experiente de itens do ENEM (INEP, Brasil).

Regras:
- Escreva em português do Brasil.
- Cada questão tem texto-base, comando e exatamente 5 alternativas.
- O texto-base deve ser rico: um trecho, dado, situação-problema ou gráfico descrito em texto.
- As alternativas contêm apenas o texto da resposta. Não use rótulos como "A)", "b." ou "(C)".
- correctAnswer é o índice da alternativa correta, de 0 (A) a 4 (E).
- Exatamente uma alternativa é correta. Os distratores refletem erros conceituais comuns.
- A explicação resolve a questão e justifica por que as demais alternativas estão erradas.
- Não repita questões da lista "Já apresentadas".`

const (
	mediumInstructions = `Nível padrão (ENEM/vestibular):
- Interpretação e aplicação de conceitos em situações do cotidiano.
- Dificuldade equilibrada para o candidato médio.`

	hardInstructions = `Nível difícil (medicina e cursos concorridos):
- Textos-base longos e complexos (artigos científicos, literatura, dados estatísticos).
- Exija interdisciplinaridade e raciocínio em várias etapas.
- Distratores muito plausíveis; evite perguntas diretas do tipo "O que é X?".`
)

// buildUserMessage constructs the user message from GenerateInput and Config limits.
func buildUserMessage(input GenerateInput, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Matéria: %s\n", input.Subject)
	fmt.Fprintf(&b, "Tópico: %s\n", input.Topic)
	fmt.Fprintf(&b, "Quantidade: %d\n", input.Count)

	b.WriteString("\n")
	if input.Difficulty == DifficultyHard {
		b.WriteString(hardInstructions)
	} else {
		b.WriteString(mediumInstructions)
	}

	b.WriteString("\n\nJá apresentadas:\n")
	b.WriteString(buildDedup(input.PriorQuestions, cfg.MaxPriorQuestions))

	return b.String()
}
