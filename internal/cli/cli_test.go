// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-seedshare.
//
// go-seedshare is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-seedshare/pkg/crypto/rand"
	"github.com/jeremyhahn/go-seedshare/pkg/seedshare"
)

const abandonAbout = "abandon abandon abandon abandon abandon abandon " +
	"abandon abandon abandon abandon abandon about"

// clearEnv blanks the variables read by flag binding and config loading.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"SEEDSHARE_CONFIG", "SEEDSHARE_OUTPUT", "SEEDSHARE_VERBOSE", "SEEDSHARE_RNG",
		"SEEDSHARE_METRICS_TEXTFILE", "SEEDSHARE_METRICS_ENABLED",
		"SEEDSHARE_LOG_LEVEL", "SEEDSHARE_LOG_FORMAT", "SEEDSHARE_RNG_MODE", "SEEDSHARE_RNG_FALLBACK",
		"SEEDSHARE_SHARE_WORDLIST", "SEEDSHARE_MNEMONIC_WORDLIST",
	} {
		t.Setenv(name, "")
	}
}

// execute runs the CLI with stdin and returns what it wrote.
func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root, _ := newRootCommand()
	var out, errOut bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--rng", "software"))
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func split(t *testing.T, command, stdin string, count, threshold string) []string {
	t.Helper()
	out, _, err := execute(t, stdin, command, count, threshold)
	require.NoError(t, err)
	shares := lines(out)
	n := 0
	for _, c := range count {
		n = n*10 + int(c-'0')
	}
	require.Len(t, shares, n)
	return shares
}

func TestDistHex_MergeHex(t *testing.T) {
	clearEnv(t)
	secret := "00890bfa4691d38f61aef03100000000"

	shares := split(t, "disthex", secret+"\n", "3", "2")
	for _, s := range shares {
		assert.Len(t, strings.Fields(s), 17)
	}

	out, _, err := execute(t, shares[2]+"\n"+shares[0]+"\n", "mergehex")
	require.NoError(t, err)
	assert.Equal(t, secret+"\n", out)

	// Input is matched case-insensitively and surrounding space is ignored.
	out, _, err = execute(t, "  "+strings.ToUpper(shares[1])+"  \n\n"+shares[2]+"\n", "mergehex")
	require.NoError(t, err)
	assert.Equal(t, secret+"\n", out)
}

func TestMergeHex_SkipsRejectedLines(t *testing.T) {
	clearEnv(t)
	secret := "ffeeddccbbaa99887766554433221100"
	shares := split(t, "disthex", secret, "3", "2")

	input := strings.Join([]string{
		"not a share",
		shares[0],
		shares[0],
		shares[1],
		shares[2],
	}, "\n")

	out, stderr, err := execute(t, input, "mergehex", "--verbose")
	require.NoError(t, err)
	assert.Equal(t, secret+"\n", out)
	assert.Contains(t, stderr, "line 1 rejected")
	assert.Contains(t, stderr, "line 3 rejected")
	assert.Contains(t, stderr, "duplicate share index")
	assert.Contains(t, stderr, "[VERBOSE] share 1 accepted, 1 of 2 entered")
	assert.NotContains(t, stderr, "line 5")
	assert.Contains(t, stderr, `level=WARN msg="rejected share"`)
	assert.Contains(t, stderr, "reason=duplicate_index")
}

func TestMergeHex_LogLevel(t *testing.T) {
	clearEnv(t)
	shares := split(t, "disthex", "ffeeddccbbaa99887766554433221100", "3", "2")
	input := shares[0] + "\n" + shares[0] + "\n" + shares[1] + "\n"

	t.Setenv("SEEDSHARE_LOG_LEVEL", "error")
	_, stderr, err := execute(t, input, "mergehex")
	require.NoError(t, err)
	assert.Contains(t, stderr, "line 2 rejected")
	assert.NotContains(t, stderr, "level=WARN")

	t.Setenv("SEEDSHARE_LOG_LEVEL", "warn")
	_, stderr, err = execute(t, input, "mergehex")
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=WARN")
	assert.NotContains(t, stderr, "level=DEBUG")
}

func TestMergeHex_NotEnoughShares(t *testing.T) {
	clearEnv(t)
	shares := split(t, "disthex", "00112233445566778899aabbccddeeff", "5", "3")

	_, _, err := execute(t, shares[0]+"\n"+shares[4]+"\n", "mergehex")
	assert.ErrorIs(t, err, seedshare.ErrSessionNotReady)

	_, _, err = execute(t, "", "mergehex")
	assert.ErrorIs(t, err, seedshare.ErrSessionNotReady)
}

func TestDistRaw_MergeASCII(t *testing.T) {
	clearEnv(t)
	text := "Hello, World"

	shares := split(t, "distraw", text+"\r\n", "2", "2")

	out, _, err := execute(t, strings.Join(shares, "\n"), "mergeascii")
	require.NoError(t, err)
	assert.Equal(t, text+"\n", out)
}

func TestDistMnemonic_MergeMnemonic(t *testing.T) {
	clearEnv(t)
	shares := split(t, "distmnemonic", abandonAbout, "4", "3")

	out, _, err := execute(t, shares[3]+"\n"+shares[1]+"\n"+shares[0]+"\n", "mergemnemonic")
	require.NoError(t, err)
	assert.Equal(t, abandonAbout+"\n", out)

	_, _, err = execute(t, strings.Repeat("abandon ", 12), "distmnemonic", "3", "2")
	assert.Error(t, err)
}

func TestMergeSeed(t *testing.T) {
	clearEnv(t)
	shares := split(t, "disthex", "bb54aac4b89dc868ba37d9cc21b2cece", "3", "2")
	input := shares[0] + "\n" + shares[2] + "\n"

	out, _, err := execute(t, input, "mergeseed", "TREZOR")
	require.NoError(t, err)
	assert.Equal(t, "a90af7921d4ced350bd4818887c25edb663fdf3fb66283a2ce9e4e13ae2095e1\n", out)

	out, _, err = execute(t, input, "mergeseed")
	require.NoError(t, err)
	assert.Equal(t, "75644b29b6fa2136a48f8cecbe7ab7e47b72f08d6a1862e3d3defc521b1ffefe\n", out)
}

func TestPassphraseFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "passphrase")
	require.NoError(t, os.WriteFile(file, []byte("TREZOR\n"), 0600))

	shares := split(t, "disthex", "bb54aac4b89dc868ba37d9cc21b2cece", "3", "2")
	input := shares[1] + "\n" + shares[2] + "\n"

	out, _, err := execute(t, input, "mergeseed", "--passphrase-file", file)
	require.NoError(t, err)
	assert.Equal(t, "a90af7921d4ced350bd4818887c25edb663fdf3fb66283a2ce9e4e13ae2095e1\n", out)

	out, _, err = execute(t, abandonAbout+"\n", "seed", "--passphrase-file", file)
	require.NoError(t, err)
	assert.Equal(t, "c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e5349553"+
		"1f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04\n", out)

	// An empty file is the empty passphrase.
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0600))
	out, _, err = execute(t, input, "mergeseed", "--passphrase-file", empty)
	require.NoError(t, err)
	assert.Equal(t, "75644b29b6fa2136a48f8cecbe7ab7e47b72f08d6a1862e3d3defc521b1ffefe\n", out)

	_, _, err = execute(t, input, "mergeseed", "TREZOR", "--passphrase-file", file)
	assert.ErrorIs(t, err, ErrPassphraseSources)

	_, _, err = execute(t, abandonAbout, "seed", "--passphrase-file", filepath.Join(dir, "absent"))
	assert.ErrorContains(t, err, "failed to open passphrase file")
}

func TestSeed(t *testing.T) {
	clearEnv(t)

	out, _, err := execute(t, abandonAbout+"\n", "seed", "TREZOR")
	require.NoError(t, err)
	assert.Equal(t, "c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e5349553"+
		"1f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04\n", out)

	_, _, err = execute(t, "", "seed")
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestGenerate(t *testing.T) {
	clearEnv(t)

	out, _, err := execute(t, "", "generate")
	require.NoError(t, err)
	assert.Len(t, strings.Fields(out), 24)

	out, _, err = execute(t, "", "generate", "--bytes", "16")
	require.NoError(t, err)
	generated := strings.TrimSpace(out)
	assert.Len(t, strings.Fields(generated), 12)

	// A generated mnemonic is accepted by the splitter.
	split(t, "distmnemonic", generated, "2", "2")

	out, _, err = execute(t, "", "generate", "--hex", "-b", "20")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(out), 40)

	_, _, err = execute(t, "", "generate", "--bytes", "10")
	assert.Error(t, err)
}

func TestJSONOutput(t *testing.T) {
	clearEnv(t)
	secret := "0123456789abcdef0123456789abcdef"

	out, _, err := execute(t, secret, "disthex", "3", "2", "-o", "json")
	require.NoError(t, err)

	var split struct {
		Threshold int      `json:"threshold"`
		Count     int      `json:"count"`
		Shares    []string `json:"shares"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &split))
	assert.Equal(t, 2, split.Threshold)
	assert.Equal(t, 3, split.Count)
	require.Len(t, split.Shares, 3)

	out, _, err = execute(t, split.Shares[1]+"\n"+split.Shares[2], "mergehex", "--output", "json")
	require.NoError(t, err)
	var merged map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &merged))
	assert.Equal(t, secret, merged["hex"])
}

func TestOutputFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEEDSHARE_OUTPUT", "json")

	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, Version, info["version"])

	// An explicit flag wins over the environment.
	out, _, err = execute(t, "", "version", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "seedshare version "+Version)
}

func TestMetricsTextfile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "seedshare.prom")

	_, _, err := execute(t, "00112233445566778899aabbccddeeff", "disthex", "3", "2", "--metrics-textfile", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "seedshare_operations_total")
	assert.Contains(t, string(data), `operation="split"`)
}

func TestMetricsTextfile_WriteFailureIsLogged(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "missing", "seedshare.prom")

	out, stderr, err := execute(t, "00112233445566778899aabbccddeeff", "disthex", "3", "2", "--metrics-textfile", path)
	require.NoError(t, err)
	assert.Len(t, lines(out), 3)
	assert.Contains(t, stderr, "level=ERROR")
	assert.Contains(t, stderr, "failed to write metrics textfile")
	assert.NoFileExists(t, path)
}

func TestInvalidEnvironmentIsLogged(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEEDSHARE_METRICS_ENABLED", "maybe")

	_, stderr, err := execute(t, "00112233", "disthex", "2", "2")
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=WARN")
	assert.Contains(t, stderr, "ignored environment override")
	assert.Contains(t, stderr, "SEEDSHARE_METRICS_ENABLED")
}

func TestConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.yaml")
	require.NoError(t, os.WriteFile(valid, []byte("logging:\n  format: json\nrandom:\n  mode: software\n"), 0600))
	_, _, err := execute(t, "00112233", "disthex", "2", "2", "--config", valid)
	require.NoError(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("logging:\n  level: loud\n"), 0600))
	_, _, err = execute(t, "00112233", "disthex", "2", "2", "--config", invalid)
	assert.ErrorContains(t, err, "invalid log level")

	missingList := filepath.Join(dir, "wordlist.yaml")
	require.NoError(t, os.WriteFile(missingList,
		[]byte("wordlists:\n  share: "+filepath.Join(dir, "absent.txt")+"\n"), 0600))
	_, _, err = execute(t, "00112233", "disthex", "2", "2", "--config", missingList)
	assert.ErrorContains(t, err, "share wordlist")
}

func TestCommandErrors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"bad count", "00112233", []string{"disthex", "x", "2"}, "invalid share count"},
		{"bad threshold", "00112233", []string{"disthex", "3", "y"}, "invalid threshold"},
		{"threshold above count", "00112233", []string{"disthex", "2", "3"}, "greater or equal"},
		{"too many shares", "00112233", []string{"disthex", "33", "2"}, "invalid parameters"},
		{"missing args", "00112233", []string{"disthex", "3"}, "accepts 2 arg(s)"},
		{"invalid hex", "xyz", []string{"disthex", "3", "2"}, "invalid hex"},
		{"odd length", "001122", []string{"disthex", "3", "2"}, "invalid secret"},
		{"no input", "", []string{"disthex", "3", "2"}, "no input"},
		{"unknown format", "00112233", []string{"disthex", "3", "2", "-o", "yaml"}, "unknown output format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.stdin, tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestUnknownRNG(t *testing.T) {
	clearEnv(t)
	root, _ := newRootCommand()
	root.SetIn(strings.NewReader("00112233"))
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"disthex", "2", "2", "--rng", "dice"})
	assert.ErrorIs(t, root.Execute(), rand.ErrUnknownMode)
}
