package routes_test

import (
	"encoding/json"
	"testing"

	"git.sr.ht/~jakintosh/inkwell/internal/logging"
	"git.sr.ht/~jakintosh/inkwell/internal/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultTable(t *testing.T) *routes.Table {
	t.Helper()
	table, err := routes.NewTable(routes.DefaultRules(), logging.Discard())
	require.NoError(t, err)
	return table
}

func TestDefaultRules_Classify(t *testing.T) {
	t.Parallel()
	table := newDefaultTable(t)

	tests := []struct {
		method string
		path   string
		want   routes.Class
	}{
		{"OPTIONS", "/auth/logout", routes.Public},
		{"OPTIONS", "/", routes.Public},
		{"OPTIONS", "/users/1/anything/deep", routes.Public},
		{"GET", "/hc", routes.Public},
		{"POST", "/auth/login", routes.Public},
		{"POST", "/auth/signup", routes.Public},
		{"POST", "/auth/refresh", routes.RefreshOnly},
		{"POST", "/auth/refresh/", routes.RefreshOnly},
		{"POST", "/auth/logout", routes.AuthRequired},
		{"GET", "/users/me", routes.AuthRequired},
		{"GET", "/users/7", routes.Public},
		{"DELETE", "/users/7", routes.AuthRequired},
		{"GET", "/users/7/posts", routes.AuthRequired},
		{"GET", "/posts", routes.Public},
		{"GET", "/posts/3/comments", routes.Public},
		{"POST", "/posts", routes.AuthRequired},
		{"GET", "/auth/refresh", routes.AuthRequired},
		{"GET", "/unknown", routes.AuthRequired},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, table.Classify(tt.method, tt.path), "%s %s", tt.method, tt.path)
	}
}

func TestTable_FirstMatchWins(t *testing.T) {
	t.Parallel()
	table, err := routes.NewTable([]routes.Rule{
		{Method: "GET", Pattern: "/a/b", Class: routes.AuthRequired},
		{Method: "*", Pattern: "/a/*", Class: routes.Public},
	}, logging.Discard())
	require.NoError(t, err)

	assert.Equal(t, routes.AuthRequired, table.Classify("GET", "/a/b"))
	assert.Equal(t, routes.Public, table.Classify("GET", "/a/c"))
	assert.Equal(t, routes.Public, table.Classify("delete", "/a/c"))
}

func TestTable_DoubleStarMatchesNothingAndMore(t *testing.T) {
	t.Parallel()
	table, err := routes.NewTable([]routes.Rule{
		{Pattern: "/posts/**/comments", Class: routes.Public},
	}, logging.Discard())
	require.NoError(t, err)

	assert.Equal(t, routes.Public, table.Classify("GET", "/posts/comments"))
	assert.Equal(t, routes.Public, table.Classify("GET", "/posts/1/comments"))
	assert.Equal(t, routes.Public, table.Classify("GET", "/posts/1/2/comments"))
	assert.Equal(t, routes.AuthRequired, table.Classify("GET", "/posts/1/likes"))
}

func TestTable_ReplaceRejectsInvalid(t *testing.T) {
	t.Parallel()
	table := newDefaultTable(t)
	before := table.Rules()

	err := table.Replace([]routes.Rule{{Method: "GET", Pattern: "no-slash", Class: routes.Public}})
	require.Error(t, err)

	err = table.Replace([]routes.Rule{{Method: "GET", Pattern: "/[", Class: routes.Public}})
	require.Error(t, err)

	err = table.Replace([]routes.Rule{{Method: "GET", Pattern: "/x", Class: routes.Class(42)}})
	require.Error(t, err)

	// failed replacements leave the table as it was
	assert.Equal(t, before, table.Rules())
}

func TestTable_RulesIsACopy(t *testing.T) {
	t.Parallel()
	table := newDefaultTable(t)

	rules := table.Rules()
	rules[0].Class = routes.AuthRequired
	assert.Equal(t, routes.Public, table.Classify("OPTIONS", "/auth/logout"))
}

func TestClass_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(routes.Rule{Method: "POST", Pattern: "/auth/refresh", Class: routes.RefreshOnly})
	require.NoError(t, err)
	assert.JSONEq(t, `{"method":"POST","pattern":"/auth/refresh","class":"refresh_only"}`, string(data))

	var rule routes.Rule
	require.NoError(t, json.Unmarshal([]byte(`{"method":"GET","pattern":"/hc","class":"public"}`), &rule))
	assert.Equal(t, routes.Public, rule.Class)

	require.Error(t, json.Unmarshal([]byte(`{"class":"admin"}`), &rule))
}
