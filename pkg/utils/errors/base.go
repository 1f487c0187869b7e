package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// OK represents a successful operation.
var OK = Register(New(0, http.StatusOK, codes.OK, "Success", "Succès"))

// 通用请求错误 (类别 01)
var (
	ErrBadRequest       = Register(New(MakeCode(ServiceCommon, CategoryRequest, 0), http.StatusBadRequest, codes.InvalidArgument, "Bad request", "Requête invalide"))
	ErrInvalidParam     = Register(New(MakeCode(ServiceCommon, CategoryRequest, 1), http.StatusBadRequest, codes.InvalidArgument, "Invalid parameter", "Paramètre invalide"))
	ErrValidationFailed = Register(New(MakeCode(ServiceCommon, CategoryRequest, 4), http.StatusBadRequest, codes.InvalidArgument, "Validation failed", "Échec de la validation"))
)

// 资源错误 (类别 04)
var (
	ErrNotFound      = Register(New(MakeCode(ServiceCommon, CategoryResource, 0), http.StatusNotFound, codes.NotFound, "Resource not found", "Ressource introuvable"))
	ErrRouteNotFound = Register(New(MakeCode(ServiceCommon, CategoryResource, 4), http.StatusNotFound, codes.NotFound, "Route not found", "Route introuvable"))
)

// 限流错误 (类别 06)
var (
	ErrTooManyRequests = Register(New(MakeCode(ServiceCommon, CategoryRateLimit, 0), http.StatusTooManyRequests, codes.ResourceExhausted, "Too many requests", "Trop de requêtes"))
)

// 内部错误 (类别 07)
var (
	ErrInternal = Register(New(MakeCode(ServiceCommon, CategoryInternal, 0), http.StatusInternalServerError, codes.Internal, "Internal server error", "Erreur interne du serveur"))
	ErrPanic    = Register(New(MakeCode(ServiceCommon, CategoryInternal, 2), http.StatusInternalServerError, codes.Internal, "Internal panic", "Panique interne"))
)

// 基础设施错误 (类别 08-12)
var (
	ErrDatabase           = Register(New(MakeCode(ServiceCommon, CategoryDatabase, 0), http.StatusInternalServerError, codes.Internal, "Database error", "Erreur de base de données"))
	ErrCache              = Register(New(MakeCode(ServiceCommon, CategoryCache, 0), http.StatusInternalServerError, codes.Internal, "Cache error", "Erreur de cache"))
	ErrServiceUnavailable = Register(New(MakeCode(ServiceCommon, CategoryNetwork, 1), http.StatusServiceUnavailable, codes.Unavailable, "Service unavailable", "Service indisponible"))
	ErrRequestTimeout     = Register(New(MakeCode(ServiceCommon, CategoryTimeout, 1), http.StatusGatewayTimeout, codes.DeadlineExceeded, "Request timeout", "Délai de requête dépassé"))
	ErrConfigInvalid      = Register(New(MakeCode(ServiceCommon, CategoryConfig, 2), http.StatusInternalServerError, codes.Internal, "Invalid configuration", "Configuration invalide"))
)
