package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"intent":"GREETING"}`, `{"intent":"GREETING"}`},
		{"bare array", `[1,2,3]`, `[1,2,3]`},
		{"code fence", "```json\n{\"query\":\"batik\"}\n```", `{"query":"batik"}`},
		{"surrounding prose", `Sure, here you go: {"query":"batik"} Hope that helps!`, `{"query":"batik"}`},
		{"object before array", `{"a":[1,2]} trailing`, `{"a":[1,2]}`},
		{"nested objects", `noise {"a":{"b":1}} noise`, `{"a":{"b":1}}`},
		{"whitespace only", "   ", ""},
		{"no json at all", "plain prose answer", "plain prose answer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONObject(tt.in))
		})
	}
}
