package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("hello world\n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetPassword_Error(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}
	var out bytes.Buffer
	_, err := GetPassword(&out)
	if err == nil {
		t.Fatal("expected error")
	}
}

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetInstant(t *testing.T) {
	var out bytes.Buffer

	t.Run("dashboard notation, day before month", func(t *testing.T) {
		got, err := GetInstant(rdr("03/04/2024 09:15\n"), "Pulled", &out)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, time.April, got.Month())
		require.Equal(t, 3, got.Day())
		require.Equal(t, 9, got.Hour())
	})

	t.Run("empty input skips", func(t *testing.T) {
		got, err := GetInstant(rdr("\n"), "Pulled", &out)
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("placeholder skips", func(t *testing.T) {
		got, err := GetInstant(rdr("-\n"), "Pulled", &out)
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("garbage is an error, not a guess", func(t *testing.T) {
		_, err := GetInstant(rdr("soon\n"), "Pulled", &out)
		require.Error(t, err)
	})
}
