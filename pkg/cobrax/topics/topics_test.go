// pkg/cobrax/topics/topics_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: fstest.MapFS
// PURPOSE: Test topic loading, lookup and the help command

package topics

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topicFS() fstest.MapFS {
	return fstest.MapFS{
		"store.md":                {Data: []byte("# Store\n\nWhere packages live")},
		"option-changed.txt":      {Data: []byte("Only publish when contents changed")},
		"lockfile.txxt":           {Data: []byte("Lockfile format")},
		"ignore.json":             {Data: []byte("{}")},
		"advanced/push.md":        {Data: []byte("Push propagation")},
		"advanced/nested/deep.md": {Data: []byte("deep")},
	}
}

func TestLoad(t *testing.T) {
	t.Run("default_extensions", func(t *testing.T) {
		tm := New(topicFS(), Options{})
		require.NoError(t, tm.Load())

		assert.Equal(t, []string{"deep", "option-changed", "push", "store"}, tm.ListTopics())
		topic, ok := tm.GetTopic("store")
		require.True(t, ok)
		assert.Equal(t, "# Store\n\nWhere packages live", topic.Content)
		assert.Equal(t, "store.md", topic.Path)
	})

	t.Run("custom_extensions", func(t *testing.T) {
		tm := New(topicFS(), Options{Extensions: []string{".txxt"}})
		require.NoError(t, tm.Load())
		assert.Equal(t, []string{"lockfile"}, tm.ListTopics())
	})

	t.Run("nil_filesystem", func(t *testing.T) {
		tm := New(nil, Options{})
		require.NoError(t, tm.Load())
		assert.Empty(t, tm.ListTopics())
	})
}

func TestGetTopic(t *testing.T) {
	tm := New(topicFS(), Options{})
	require.NoError(t, tm.Load())

	tests := []struct {
		input    string
		expected string
		exists   bool
	}{
		{"store", "store", true},
		{"option-changed", "option-changed", true},
		{"changed", "option-changed", true},
		{"--changed", "option-changed", true},
		{"-changed", "option-changed", true},
		{"-v", "", false},
		{"nonexistent", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			topic, ok := tm.GetTopic(tt.input)
			assert.Equal(t, tt.exists, ok)
			if ok {
				assert.Equal(t, tt.expected, topic.Name)
			}
		})
	}
}

func newRoot(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	rootCmd := &cobra.Command{Use: "testapp", Short: "Test application"}
	rootCmd.AddCommand(&cobra.Command{Use: "publish", Short: "Publish a package", Run: func(cmd *cobra.Command, args []string) {}})

	_, err := Initialize(rootCmd, topicFS(), Options{})
	require.NoError(t, err)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	return rootCmd, &out
}

func TestHelpCommand(t *testing.T) {
	t.Run("replaces_help", func(t *testing.T) {
		rootCmd, _ := newRoot(t)
		helpCmd, _, err := rootCmd.Find([]string{"help"})
		require.NoError(t, err)
		assert.Equal(t, "help [command or topic]", helpCmd.Use)
	})

	t.Run("shows_topic", func(t *testing.T) {
		rootCmd, out := newRoot(t)
		rootCmd.SetArgs([]string{"help", "changed"})
		require.NoError(t, rootCmd.Execute())
		assert.Contains(t, out.String(), "Only publish when contents changed")
	})

	t.Run("lists_topics", func(t *testing.T) {
		rootCmd, out := newRoot(t)
		rootCmd.SetArgs([]string{"help", "topics"})
		require.NoError(t, rootCmd.Execute())
		assert.Contains(t, out.String(), "General topics:")
		assert.Contains(t, out.String(), "  store")
		assert.Contains(t, out.String(), "  --changed")
		assert.Contains(t, out.String(), "testapp help <topic>")
	})

	t.Run("falls_back_to_command_help", func(t *testing.T) {
		rootCmd, out := newRoot(t)
		rootCmd.SetArgs([]string{"help", "publish"})
		require.NoError(t, rootCmd.Execute())
		assert.Contains(t, out.String(), "Publish a package")
	})
}

func TestGlamourRendererPassesThroughText(t *testing.T) {
	r := NewGlamourRenderer(true)
	assert.Equal(t, "plain text", r.Render("plain text", ".txt"))
	assert.Contains(t, r.Render("# Title", ".md"), "Title")
}
