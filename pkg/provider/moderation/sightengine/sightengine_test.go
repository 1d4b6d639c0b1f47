package sightengine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()
	if _, err := New("", "secret"); err == nil {
		t.Error("expected error for empty user")
	}
	if _, err := New("user", ""); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		response    string
		status      int
		wantFlagged bool
		wantMatches []string
		wantErr     bool
	}{
		{
			name:     "clean",
			response: `{"status":"success","profanity":{"matches":[]}}`,
			status:   http.StatusOK,
		},
		{
			name:        "flagged",
			response:    `{"status":"success","profanity":{"matches":[{"type":"inappropriate","match":"stupid"},{"type":"insult","match":"dumb"}]}}`,
			status:      http.StatusOK,
			wantFlagged: true,
			wantMatches: []string{"stupid", "dumb"},
		},
		{
			name:     "api failure",
			response: `{"status":"failure","error":{"message":"bad credentials"}}`,
			status:   http.StatusOK,
			wantErr:  true,
		},
		{
			name:     "http error",
			response: `oops`,
			status:   http.StatusBadGateway,
			wantErr:  true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var form map[string]string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				r.ParseForm()
				form = map[string]string{
					"text": r.PostForm.Get("text"),
					"mode": r.PostForm.Get("mode"),
					"lang": r.PostForm.Get("lang"),
					"user": r.PostForm.Get("api_user"),
				}
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.response))
			}))
			defer srv.Close()

			c, _ := New("user", "secret", WithEndpoint(srv.URL))
			res, err := c.Check(context.Background(), "a hint about cats", "nl")
			if (err != nil) != tc.wantErr {
				t.Fatalf("Check() err = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil {
				return
			}
			if res.Flagged != tc.wantFlagged {
				t.Errorf("Flagged = %v, want %v", res.Flagged, tc.wantFlagged)
			}
			if !slices.Equal(res.Matches, tc.wantMatches) {
				t.Errorf("Matches = %v, want %v", res.Matches, tc.wantMatches)
			}
			if form["mode"] != "rules" || form["lang"] != "nl" || form["user"] != "user" || form["text"] != "a hint about cats" {
				t.Errorf("form = %v", form)
			}
		})
	}
}
