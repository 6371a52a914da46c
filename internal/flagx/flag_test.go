package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	config := []string{"-c", "-config"}
	server := []string{"-a", "-d", "-k"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"separate value", []string{"-c", "omh.json", "-a", ":8080"}, config, []string{"-c", "omh.json"}},
		{"joined value", []string{"-config=omh.json", "-a", ":8080"}, config, []string{"-config=omh.json"}},
		{"order preserved", []string{"-config=a.json", "-c", "b.json"}, config, []string{"-config=a.json", "-c", "b.json"}},
		{"nothing allowed present", []string{"-x", "1", "-y=2", "migrate"}, config, []string{}},
		{"trailing flag without value", []string{"-c"}, config, []string{"-c"}},
		{"dash token is not a value", []string{"-c", "-config=b.json"}, config, []string{"-c", "-config=b.json"}},
		{"server flags out of mixed args", []string{"-a", ":8080", "-c", "omh.json", "-k", "60", "-d", "memory://"}, server, []string{"-a", ":8080", "-k", "60", "-d", "memory://"}},
		{"admin subcommand ignored", []string{"-d", "postgres://x", "user", "add", "bob"}, server, []string{"-d", "postgres://x"}},
		{"empty", nil, config, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func Test_jsonConfigFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short -c with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/short.json"}
		assert.Equal(t, "/path/short.json", JsonConfigFlags())
	})

	t.Run("long -config with value", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", "/path/long.json"}
		assert.Equal(t, "/path/long.json", JsonConfigFlags())
	})

	t.Run("unknown flags are ignored", func(t *testing.T) {
		os.Args = []string{"testbin", "-x", "1", "-y", "2"}
		assert.Empty(t, JsonConfigFlags())
	})

	t.Run("multiple flags, last wins", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/1.json", "-config", "/path/2.json"}
		assert.Equal(t, "/path/2.json", JsonConfigFlags())
	})
}

func TestConfigPath(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("flag wins over env", func(t *testing.T) {
		t.Setenv(ConfigEnvName, "/env/omh.json")
		os.Args = []string{"testbin", "-c", "/flag/omh.json"}
		assert.Equal(t, "/flag/omh.json", ConfigPath())
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv(ConfigEnvName, "/env/omh.json")
		os.Args = []string{"testbin", "-a", ":8080"}
		assert.Equal(t, "/env/omh.json", ConfigPath())
	})

	t.Run("nothing set", func(t *testing.T) {
		t.Setenv(ConfigEnvName, "")
		os.Args = []string{"testbin"}
		assert.Empty(t, ConfigPath())
	})
}

func TestStripArgs(t *testing.T) {
	known := []string{"-d", "-c"}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"no flags", []string{"user", "add", "bob"}, []string{"user", "add", "bob"}},
		{"flag with value", []string{"-d", "postgres://x", "user", "add", "bob"}, []string{"user", "add", "bob"}},
		{"joined form", []string{"-d=postgres://x", "migrate"}, []string{"migrate"}},
		{"unknown flags kept", []string{"-z", "1", "migrate"}, []string{"-z", "1", "migrate"}},
		{"flag without value", []string{"migrate", "-d"}, []string{"migrate"}},
		{"value looks like flag", []string{"-d", "-c", "f.json", "migrate"}, []string{"migrate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripArgs(tt.args, known))
		})
	}
}
