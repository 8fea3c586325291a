/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package chat

import (
	"reflect"
	"testing"
)

func TestParseSlashCommand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *SlashCommand
	}{
		{"not a command", "show me tablespaces", nil},
		{"bare slash", "/", nil},
		{"no args", "/databases", &SlashCommand{Command: "databases", Args: []string{}}},
		{"one arg", "/database finance", &SlashCommand{Command: "database", Args: []string{"finance"}}},
		{"extra spaces", "/execute   on", &SlashCommand{Command: "execute", Args: []string{"on"}}},
		{"double quotes", `/database "my db"`, &SlashCommand{Command: "database", Args: []string{"my db"}}},
		{"single quotes", `/database 'a b' c`, &SlashCommand{Command: "database", Args: []string{"a b", "c"}}},
		{"escaped quote", `/x "say \"hi\""`, &SlashCommand{Command: "x", Args: []string{`say "hi"`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSlashCommand(tt.input)
			if tt.expected == nil {
				if got != nil {
					t.Errorf("expected nil, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected command, got nil")
			}
			if got.Command != tt.expected.Command {
				t.Errorf("Command = %q, want %q", got.Command, tt.expected.Command)
			}
			if len(got.Args) != len(tt.expected.Args) || (len(got.Args) > 0 && !reflect.DeepEqual(got.Args, tt.expected.Args)) {
				t.Errorf("Args = %q, want %q", got.Args, tt.expected.Args)
			}
		})
	}
}
