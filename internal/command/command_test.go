package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirsend/internal/config"
)

func testOptions() config.RunOptions {
	return config.RunOptions{
		Host:          "10.0.0.5",
		Port:          "104",
		AETitle:       "TEST",
		CalledAETitle: "REMOTE",
		Executable:    "dcmsend",
	}
}

func TestBuild(t *testing.T) {
	spec := Build(testOptions(), "a.dcm")

	assert.Equal(t, "dcmsend", spec.Program)
	assert.Equal(t, []string{"dcmsend", "-aet", "TEST", "-aec", "REMOTE", "10.0.0.5", "104", "a.dcm"}, spec.Argv())
	assert.Equal(t, "dcmsend -aet TEST -aec REMOTE 10.0.0.5 104 a.dcm", spec.String())
}

func TestBuildIsDeterministic(t *testing.T) {
	opts := testOptions()
	first := Build(opts, "/in/series 1/img001.dcm")

	for i := 0; i < 10; i++ {
		again := Build(opts, "/in/series 1/img001.dcm")
		require.Equal(t, first.Argv(), again.Argv())
		require.Equal(t, first.String(), again.String())
	}
}

func TestBuildKeepsPathsAsSingleArguments(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		rendered string
	}{
		{"whitespace", "/in/my scan.dcm", `dcmsend -aet TEST -aec REMOTE 10.0.0.5 104 '/in/my scan.dcm'`},
		{"command substitution", "/in/$(rm -rf ~).dcm", `dcmsend -aet TEST -aec REMOTE 10.0.0.5 104 '/in/$(rm -rf ~).dcm'`},
		{"separator", "/in/a.dcm; echo pwned", `dcmsend -aet TEST -aec REMOTE 10.0.0.5 104 '/in/a.dcm; echo pwned'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := Build(testOptions(), tt.path)
			argv := spec.Argv()

			require.Len(t, argv, 8)
			assert.Equal(t, tt.path, argv[7])
			assert.Equal(t, tt.rendered, spec.String())
		})
	}
}

func TestBuildDefaultsExecutable(t *testing.T) {
	opts := testOptions()
	opts.Executable = ""

	assert.Equal(t, "dcmsend", Build(opts, "a.dcm").Program)

	opts.Executable = "/opt/dcmtk/bin/dcmsend"
	assert.Equal(t, "/opt/dcmtk/bin/dcmsend", Build(opts, "a.dcm").Program)
}

func TestArgvReturnsCopy(t *testing.T) {
	spec := Build(testOptions(), "a.dcm")
	argv := spec.Argv()
	argv[1] = "-mutated"

	assert.Equal(t, "-aet", spec.Args[0])
}
