package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Chat 服务错误码, 服务代码 20 (业务服务范围 20-79)

var (
	// 请求参数错误 (类别 01)
	ErrInvalidChatRequest = Register(New(MakeCode(ServiceChat, CategoryRequest, 1), http.StatusBadRequest, codes.InvalidArgument, "Invalid chat request", "Requête de chat invalide"))
	ErrEmptyQuestion      = Register(New(MakeCode(ServiceChat, CategoryRequest, 2), http.StatusBadRequest, codes.InvalidArgument, "Question must not be empty", "La question ne doit pas être vide"))

	// 资源错误 (类别 04)
	ErrDocumentNotFound     = Register(New(MakeCode(ServiceChat, CategoryResource, 1), http.StatusNotFound, codes.NotFound, "Document not found", "Document introuvable"))
	ErrRetrievalEmptyCorpus = Register(New(MakeCode(ServiceChat, CategoryResource, 2), http.StatusNotFound, codes.FailedPrecondition, "Corpus is empty", "Le corpus est vide"))

	// 关键词与检索 (类别 07)
	ErrKeywordExtraction = Register(New(MakeCode(ServiceChat, CategoryInternal, 1), http.StatusInternalServerError, codes.Internal, "Keyword extraction failed", "Échec de l'extraction des mots-clés"))
	ErrCorpusReload      = Register(New(MakeCode(ServiceChat, CategoryInternal, 2), http.StatusInternalServerError, codes.Internal, "Corpus reload failed", "Échec du rechargement du corpus"))

	// 生成错误 (类别 10)
	ErrGenerationTransient = Register(New(MakeCode(ServiceChat, CategoryNetwork, 1), http.StatusServiceUnavailable, codes.Unavailable, "Language model temporarily unavailable", "Modèle de langage temporairement indisponible"))
	ErrGenerationTerminal  = Register(New(MakeCode(ServiceChat, CategoryNetwork, 2), http.StatusBadGateway, codes.Internal, "Language model request failed", "Échec de la requête au modèle de langage"))

	// 配置错误 (类别 12)
	ErrCorpusLoad = Register(New(MakeCode(ServiceChat, CategoryConfig, 1), http.StatusInternalServerError, codes.FailedPrecondition, "Corpus could not be loaded", "Le corpus n'a pas pu être chargé"))
)

// LLM 后端错误, 服务代码 13
var (
	ErrLLMUnavailable = Register(New(MakeCode(ServiceInfraLLM, CategoryNetwork, 1), http.StatusServiceUnavailable, codes.Unavailable, "LLM backend unavailable", "Fournisseur LLM indisponible"))
	ErrLLMRateLimited = Register(New(MakeCode(ServiceInfraLLM, CategoryRateLimit, 1), http.StatusTooManyRequests, codes.ResourceExhausted, "LLM rate limit exceeded", "Limite de débit du LLM dépassée"))
)

func init() {
	RegisterService(ServiceCommon, "common")
	RegisterService(ServiceInfraDB, "infra-db")
	RegisterService(ServiceInfraCache, "infra-cache")
	RegisterService(ServiceInfraLLM, "infra-llm")
	RegisterService(ServiceChat, "iwac-chat")
}
