package web

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplateCache(t *testing.T) {
	tc, err := NewTemplateCache()
	require.NoError(t, err)

	for _, name := range []string{"landing", "waitlist", "signin", "onboarding", "app", "rooms", "guides"} {
		assert.Contains(t, tc.cache, name)
	}
}

func TestTemplates_Render(t *testing.T) {
	tc, err := NewTemplateCache()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tc.Render(&buf, "app", map[string]any{
		"Name":      "Asha <script>",
		"Username":  "asha_k",
		"RoleLabel": "Student",
		"Location":  "Toronto, Ontario",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Welcome, Asha &lt;script&gt; (@asha_k)")
	assert.Contains(t, buf.String(), "Toronto, Ontario")

	buf.Reset()
	err = tc.Render(&buf, "waitlist", map[string]any{"Roles": []string{"student", "other"}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `<option value="student">Student</option>`)

	assert.Error(t, tc.Render(&buf, "missing", nil))
}
