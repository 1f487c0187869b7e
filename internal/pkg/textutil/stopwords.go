package textutil

// 法语与英语停用词，均以 Normalize 后的形式存储。
var stopwords = buildStopwords(
	// 法语
	"au", "aux", "avec", "ce", "ces", "cet", "cette", "dans", "de", "des", "du", "elle", "elles",
	"en", "et", "eux", "il", "ils", "je", "la", "le", "les", "leur", "leurs", "lui", "ma", "mais",
	"me", "meme", "mes", "moi", "mon", "ne", "nos", "notre", "nous", "on", "ou", "par", "pas",
	"pour", "qu", "que", "qui", "quoi", "quel", "quelle", "quels", "quelles", "sa", "se", "ses",
	"son", "sur", "ta", "te", "tes", "toi", "ton", "tu", "un", "une", "vos", "votre", "vous",
	"est", "sont", "etait", "etaient", "ete", "etre", "avoir", "ai", "as", "avait", "avaient",
	"ont", "fait", "faire", "comme", "comment", "quand", "sous", "entre", "vers", "chez", "sans",
	"selon", "aussi", "tres", "plus", "moins", "tout", "tous", "toute", "toutes", "autre",
	"autres", "donc", "alors", "ainsi", "cela", "ceci", "celle", "celui", "ceux", "dont", "ici",
	"la", "y", "si", "peut", "peu", "bien", "encore", "deja", "apres", "avant", "pendant",
	"depuis", "lors", "parmi", "quelque", "quelques", "chaque", "combien", "pourquoi", "ou",
	// 英语
	"a", "about", "after", "all", "an", "and", "any", "are", "as", "at", "be", "been", "before",
	"being", "but", "by", "can", "could", "did", "do", "does", "doing", "during", "each", "few",
	"for", "from", "had", "has", "have", "having", "he", "her", "here", "hers", "him", "his",
	"how", "if", "in", "into", "is", "it", "its", "me", "more", "most", "my", "no", "nor", "not",
	"of", "off", "on", "once", "only", "or", "other", "our", "ours", "out", "over", "own", "same",
	"she", "should", "so", "some", "such", "than", "that", "the", "their", "theirs", "them",
	"then", "there", "these", "they", "this", "those", "through", "to", "too", "under", "until",
	"up", "very", "was", "we", "were", "what", "when", "where", "which", "while", "who", "whom",
	"why", "will", "with", "would", "you", "your", "yours", "tell", "know", "please",
)

func buildStopwords(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
