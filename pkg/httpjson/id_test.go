package httpjson

import (
	"encoding/json"
	"testing"
)

func TestIDAcceptsStringsAndNumbers(t *testing.T) {
	cases := map[string]ID{
		`{"id":"ci-9"}`:           "ci-9",
		`{"id":" ci-9 "}`:         "ci-9",
		`{"id":42}`:               "42",
		`{"id":9007199254740993}`: "9007199254740993",
		`{"id":null}`:             "",
		`{}`:                      "",
	}
	for raw, want := range cases {
		var v struct {
			ID ID `json:"id"`
		}
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			t.Fatalf("%s: unexpected error: %v", raw, err)
		}
		if v.ID != want {
			t.Fatalf("%s: got %q, want %q", raw, v.ID, want)
		}
	}
}

func TestIDRejectsOtherShapes(t *testing.T) {
	for _, raw := range []string{`{"id":true}`, `{"id":{"v":1}}`, `{"id":[1]}`} {
		var v struct {
			ID ID `json:"id"`
		}
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			t.Fatalf("%s: expected an error", raw)
		}
	}
}
