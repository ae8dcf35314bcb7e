package version

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractVersion(t *testing.T) {
	tests := map[string]string{
		`const VERSION = "v1.2.3"`: "v1.2.3",
		`VERSION="v10.0.1"`:        "v10.0.1",
		`VERSION = "1.2.3"`:        "",
		"nothing here":             "",
	}
	for in, want := range tests {
		if got := extractVersion(in); got != want {
			t.Errorf("extractVersion(%q) = %q, want %q", in, got, want)
		}
	}
}

func serve(t *testing.T, status int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestCheckVersion(t *testing.T) {
	ctx := context.Background()

	url := serve(t, http.StatusOK, fmt.Sprintf("const VERSION = %q\n", VERSION))
	if current, newer, err := CheckVersion(ctx, nil, url); !current || newer != "" || err != nil {
		t.Errorf("same version: %v, %q, %v", current, newer, err)
	}

	url = serve(t, http.StatusOK, `const VERSION = "v99.0.0"`)
	if current, newer, err := CheckVersion(ctx, nil, url); current || newer != "v99.0.0" || err != nil {
		t.Errorf("newer version: %v, %q, %v", current, newer, err)
	}

	url = serve(t, http.StatusNotFound, "")
	if current, _, err := CheckVersion(ctx, nil, url); !current || err == nil {
		t.Errorf("404: %v, %v", current, err)
	}

	url = serve(t, http.StatusOK, "garbage")
	if _, _, err := CheckVersion(ctx, nil, url); err == nil {
		t.Error("missing version: expected error")
	}
}
