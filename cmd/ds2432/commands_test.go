package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/onewiretools/go-ds2432/eeprom"
	"github.com/onewiretools/go-ds2432/protocol"
)

func TestParseSecret(t *testing.T) {
	secret, err := parseSecret("0011223344556677")
	require.NoError(t, err)
	assert.Equal(t, [8]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77}, secret)

	// 0x prefix is tolerated.
	secret, err = parseSecret("0xDEADBEEF01020304")
	require.NoError(t, err)
	assert.Equal(t, [8]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02, 0x03, 0x04}, secret)
}

func TestParseSecretErrors(t *testing.T) {
	for _, s := range []string{"", "zz", "0011", "001122334455667788"} {
		_, err := parseSecret(s)
		assert.Error(t, err, "input %q", s)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"link", &eeprom.LinkError{Op: "x", Err: errors.New("down")}, "link failure"},
		{"auth", &protocol.AuthError{Op: "x", Code: 0x00}, "authorization rejected (wrong secret)"},
		{"protected", &protocol.WriteProtectError{Op: "x", Code: 0xFF}, "target is write-protected"},
		{"integrity", &eeprom.PartialByteError{ES: 0x27}, "wire integrity failure (retry may help)"},
		{"disposition", &protocol.DispositionError{Op: "x", Code: 0x13}, "unexpected chip status (retry may help)"},
		{"other", errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}

func TestFormatKV(t *testing.T) {
	assert.Equal(t, "", formatKV(nil))
	assert.Equal(t, " address=0x0010", formatKV([]interface{}{"address", "0x0010"}))
	assert.Equal(t, " a=1 b=2", formatKV([]interface{}{"a", 1, "b", 2}))
	assert.Equal(t, " a=1 dangling", formatKV([]interface{}{"a", 1, "dangling"}))
}

func TestCommandWiring(t *testing.T) {
	tests := []struct {
		cmd        *cli.Command
		name       string
		wantDevice bool
	}{
		{mastersCommand(), "masters", false},
		{readCommand(), "read", true},
		{writeCommand(), "write", true},
		{registersCommand(), "registers", true},
		{readAuthCommand(), "readauth", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.cmd.Name)
			assert.NotNil(t, tt.cmd.Action)

			var hasDevice bool
			for _, f := range tt.cmd.Flags {
				for _, n := range f.Names() {
					if n == "device" {
						hasDevice = true
					}
				}
			}
			assert.Equal(t, tt.wantDevice, hasDevice, "device flag presence")
		})
	}
}

func TestSecretCommandWiring(t *testing.T) {
	cmd := secretCommand()
	require.Len(t, cmd.Commands, 2)
	assert.Equal(t, "install", cmd.Commands[0].Name)
	assert.Equal(t, "sync", cmd.Commands[1].Name)
	assert.NotNil(t, cmd.Commands[0].Action)
	assert.NotNil(t, cmd.Commands[1].Action)
}
