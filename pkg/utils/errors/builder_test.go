package errors

import (
	"net/http"
	"testing"

	"google.golang.org/grpc/codes"
)

func TestRegisterService(t *testing.T) {
	RegisterService(99, "test-service")

	name, ok := GetServiceName(99)
	if !ok {
		t.Error("GetServiceName should find registered service")
	}
	if name != "test-service" {
		t.Errorf("GetServiceName() = %q, want %q", name, "test-service")
	}

	// same name is a no-op
	RegisterService(99, "test-service")

	defer func() {
		if r := recover(); r == nil {
			t.Error("RegisterService should panic on conflict")
		}
	}()
	RegisterService(99, "different-service")
}

func TestChatServiceRegistered(t *testing.T) {
	name, ok := GetServiceName(ServiceChat)
	if !ok || name != "iwac-chat" {
		t.Errorf("GetServiceName(ServiceChat) = %q, %v", name, ok)
	}
}

func TestQuickCreationFunctions(t *testing.T) {
	tests := []struct {
		name     string
		build    func() *Errno
		wantHTTP int
		wantGRPC codes.Code
	}{
		{"request", func() *Errno { return NewRequestErr(81, 1, "Request", "Requête") }, http.StatusBadRequest, codes.InvalidArgument},
		{"not_found", func() *Errno { return NewNotFoundErr(81, 4, "Not found", "Introuvable") }, http.StatusNotFound, codes.NotFound},
		{"rate_limit", func() *Errno { return NewRateLimitErr(81, 6, "Rate limit", "Débit") }, http.StatusTooManyRequests, codes.ResourceExhausted},
		{"internal", func() *Errno { return NewInternalErr(81, 7, "Internal", "Interne") }, http.StatusInternalServerError, codes.Internal},
		{"database", func() *Errno { return NewDatabaseErr(81, 8, "Database", "Base") }, http.StatusInternalServerError, codes.Internal},
		{"cache", func() *Errno { return NewCacheErr(81, 9, "Cache", "Cache") }, http.StatusInternalServerError, codes.Internal},
		{"network", func() *Errno { return NewNetworkErr(81, 10, "Network", "Réseau") }, http.StatusServiceUnavailable, codes.Unavailable},
		{"timeout", func() *Errno { return NewTimeoutErr(81, 11, "Timeout", "Délai") }, http.StatusGatewayTimeout, codes.DeadlineExceeded},
		{"config", func() *Errno { return NewConfigErr(81, 12, "Config", "Configuration") }, http.StatusInternalServerError, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.build()
			if e.HTTP != tt.wantHTTP {
				t.Errorf("HTTP = %d, want %d", e.HTTP, tt.wantHTTP)
			}
			if e.GRPCCode != tt.wantGRPC {
				t.Errorf("GRPCCode = %v, want %v", e.GRPCCode, tt.wantGRPC)
			}
		})
	}
}

func TestNewError(t *testing.T) {
	errno := NewError(82, CategoryRequest, 1, http.StatusTeapot, codes.Aborted, "Custom error", "Erreur personnalisée")

	expectedCode := MakeCode(82, CategoryRequest, 1)
	if errno.Code != expectedCode {
		t.Errorf("Code = %d, want %d", errno.Code, expectedCode)
	}
	if errno.MessageFR != "Erreur personnalisée" {
		t.Errorf("MessageFR = %q", errno.MessageFR)
	}
	if e, ok := Lookup(expectedCode); !ok || e != errno {
		t.Error("NewError should register the errno")
	}
}

func TestNewErrorDuplicate(t *testing.T) {
	_ = NewRequestErr(83, 1, "First", "Premier")

	defer func() {
		if r := recover(); r == nil {
			t.Error("NewError should panic on duplicate code")
		}
	}()
	_ = NewRequestErr(83, 1, "Second", "Second")
}

func TestNewErrorEmptyMessage(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewError should panic when messageEN is empty")
		}
	}()
	_ = NewError(84, CategoryRequest, 1, http.StatusBadRequest, codes.InvalidArgument, "", "")
}

func TestNewErrorBoundaryValidation(t *testing.T) {
	tests := []struct {
		name      string
		service   int
		category  int
		sequence  int
		wantPanic bool
	}{
		{"valid_min_values", 85, 1, 100, false},
		{"valid_max_values", 96, 98, 998, false},
		{"service_too_small", -1, 0, 0, true},
		{"service_too_large", 100, 0, 0, true},
		{"category_too_large", 87, 100, 100, true},
		{"sequence_too_large", 89, 1, 1000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if tt.wantPanic && r == nil {
					t.Errorf("NewError() should panic for %s", tt.name)
				}
				if !tt.wantPanic && r != nil {
					t.Errorf("NewError() should not panic for %s, got: %v", tt.name, r)
				}
			}()
			_ = NewError(tt.service, tt.category, tt.sequence, http.StatusBadRequest, codes.InvalidArgument, "Test", "Test")
		})
	}
}
