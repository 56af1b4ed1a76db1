package execs_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluidos-project/kubectl-fluidos/pkg/execs"
)

func TestParseCommand(t *testing.T) {
	t.Setenv("FLUIDOS_TEST_CONTEXT", "dev")

	tcs := map[string]struct {
		line    string
		want    execs.Command
		wantErr error
	}{
		"single word": {
			line: "kubectl",
			want: execs.Command{Command: "kubectl", Args: []string{}},
		},
		"with arguments": {
			line: "kubectl --context=dev",
			want: execs.Command{Command: "kubectl", Args: []string{"--context=dev"}},
		},
		"quoted": {
			line: `"/opt/k8s tools/kubectl" -v 2`,
			want: execs.Command{Command: "/opt/k8s tools/kubectl", Args: []string{"-v", "2"}},
		},
		"environment expansion": {
			line: "kubectl --context=$FLUIDOS_TEST_CONTEXT",
			want: execs.Command{Command: "kubectl", Args: []string{"--context=dev"}},
		},
		"empty": {
			line:    "  ",
			wantErr: execs.ErrEmptyCommand,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			got, err := execs.ParseCommand(tc.line)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want.Command, got.Command)
			assert.ElementsMatch(t, tc.want.Args, got.Args)
		})
	}
}

func TestCommand_WithArgs(t *testing.T) {
	t.Parallel()

	base := execs.Command{Command: "kubectl", Args: []string{"--context=dev"}}
	got := base.WithArgs("apply", "-f", "-")

	assert.Equal(t, []string{"--context=dev", "apply", "-f", "-"}, got.Args)
	assert.Equal(t, []string{"--context=dev"}, base.Args)
	assert.Equal(t, "kubectl --context=dev apply -f -", got.String())
}

func TestExecutor_Run(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		wantErr  error
		cmd      execs.Command
		stdin    string
		wantOut  string
		wantErrS string
		wantCode int
	}{
		"success": {
			cmd:     execs.Command{Command: "echo", Args: []string{"hello"}},
			wantOut: "hello\n",
		},
		"stdin is forwarded": {
			cmd:     execs.Command{Command: "cat"},
			stdin:   "kind: ConfigMap\n",
			wantOut: "kind: ConfigMap\n",
		},
		"exit code is returned": {
			cmd:      execs.Command{Command: "sh", Args: []string{"-c", "echo oops >&2; exit 3"}},
			wantErrS: "oops\n",
			wantCode: 3,
		},
		"environment": {
			cmd: execs.Command{
				Command: "sh",
				Args:    []string{"-c", "echo $FLUIDOS_VAR"},
				Env:     []string{"FLUIDOS_VAR=value"},
			},
			wantOut: "value\n",
		},
		"missing binary": {
			cmd:      execs.Command{Command: "kubectl-fluidos-does-not-exist"},
			wantErr:  execs.ErrCommandExecution,
			wantCode: 1,
		},
		"empty command": {
			cmd:      execs.Command{},
			wantErr:  execs.ErrEmptyCommand,
			wantCode: 1,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}

			code, err := execs.NewExecutor(tc.cmd).Run(t.Context(), execs.Streams{
				In:  strings.NewReader(tc.stdin),
				Out: stdout,
				Err: stderr,
			})
			assert.Equal(t, tc.wantCode, code)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantOut, stdout.String())
			assert.Equal(t, tc.wantErrS, stderr.String())
		})
	}
}
