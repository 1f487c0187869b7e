package biz

import "fmt"

// DefaultSystemPrompt 是回答生成的默认系统提示词。
const DefaultSystemPrompt = "You are an AI assistant for the Islam West Africa Collection (IWAC). " +
	"Use the provided context to answer questions about Islam in West Africa. " +
	"Respond in the same language as the user's question."

// 降级回答同时给出法语和英语，调用方无需识别问题语言。
const (
	DefaultNoInformationMessage = "Je n'ai trouvé aucune information pertinente dans la collection Islam West Africa pour répondre à cette question.\n\n" +
		"I could not find any relevant information in the Islam West Africa Collection to answer this question."

	DefaultUnavailableMessage = "Désolé, le service de réponse est momentanément indisponible. Veuillez réessayer plus tard.\n\n" +
		"Sorry, the answering service is temporarily unavailable. Please try again later."
)

const keywordSystemPrompt = "You extract search keywords for a document collection about Islam in West Africa. " +
	"Reply with a JSON array of strings and nothing else."

func keywordPrompt(question string, maxKeywords int) string {
	return fmt.Sprintf("Return at most %d relevant search terms for the question below, as a JSON array of strings. "+
		"Use the language of the question, keep proper nouns and their accents exactly as written, "+
		"and do not include stopwords.\n\nQuestion: %s", maxKeywords, question)
}

const noContextNotice = "(No document of the collection matched this question.)"

func answerPrompt(contextText, question string) string {
	if contextText == "" {
		contextText = noContextNotice
	}
	return "Context:\n" + contextText + "\n\nQuestion: " + question
}
