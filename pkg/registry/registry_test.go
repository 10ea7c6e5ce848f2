package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func knownCodes(codes ...string) func(string) bool {
	set := map[string]bool{}
	for _, c := range codes {
		set[c] = true
	}
	return func(code string) bool { return set[code] }
}

func TestLoadRegistry_Shipped(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)

	assert.Empty(t, reg.Missing([]string{
		"load-captures",
		"load-prompt-template",
		"assemble-context",
		"build-vision-prompt",
		"call-vision-model",
		"parse-draft-response",
		"parse-draft-response-untagged",
		"save-draft-document",
		"notify-draft-ready",
	}))
	assert.Empty(t, reg.Validate(nil))

	a := reg.Find("build-vision-prompt")
	require.NotNil(t, a)
	assert.Contains(t, a.ErrorCodes, "TEMPLATE_INVALID")
}

func TestActivityRegistry_Validate(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{
		{ID: "a", TaskType: "a", Timeout: "5s", ErrorCodes: []string{"OK_CODE"}},
		{ID: "a", TaskType: "b", Timeout: "soon"},
		{ID: "c", TaskType: "a", ErrorCodes: []string{"BOGUS"}},
		{DisplayName: "nameless"},
	}}

	problems := reg.Validate(knownCodes("OK_CODE"))
	var msgs []string
	for _, p := range problems {
		msgs = append(msgs, p.Error())
	}

	assert.Contains(t, msgs, "activity a: duplicate id")
	assert.Contains(t, msgs, `activity a: invalid timeout "soon"`)
	assert.Contains(t, msgs, "activity c: duplicate taskType a")
	assert.Contains(t, msgs, "activity c: unknown error code BOGUS")
	assert.Contains(t, msgs, `activity "nameless": id and taskType are required`)
}

func TestActivityRegistry_TaskTypes(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{{TaskType: "b"}, {TaskType: "a"}}}
	assert.Equal(t, []string{"a", "b"}, reg.TaskTypes())
	assert.Nil(t, reg.Find("c"))
	assert.Equal(t, []string{"c"}, reg.Missing([]string{"a", "c"}))
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err = LoadRegistry(path)
	assert.Error(t, err)
}
