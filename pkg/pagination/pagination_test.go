package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	return FromContext(c)
}

func TestFromContext(t *testing.T) {
	cases := []struct {
		query              string
		wantLimit, wantOff int
	}{
		{"", DefaultLimit, 0},
		{"limit=50&offset=10", 50, 10},
		{"limit=0", DefaultLimit, 0},
		{"limit=-5&offset=-2", DefaultLimit, 0},
		{"limit=500", MaxLimit, 0},
		{"limit=abc&offset=xyz", DefaultLimit, 0},
	}
	for _, tc := range cases {
		p := paramsFor(t, tc.query)
		if p.Limit != tc.wantLimit || p.Offset != tc.wantOff {
			t.Errorf("query %q: got %+v, want limit=%d offset=%d",
				tc.query, p, tc.wantLimit, tc.wantOff)
		}
	}
}

func TestNewResponseHasMore(t *testing.T) {
	if !NewResponse(nil, 100, 20, 0).HasMore {
		t.Error("first page of 100 should have more")
	}
	if NewResponse(nil, 100, 20, 80).HasMore {
		t.Error("last page should not have more")
	}
	if NewResponse(nil, 0, 20, 0).HasMore {
		t.Error("empty result should not have more")
	}
}
