package config_test

import (
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/bitmark-inc/peerlog/config"
)

const sample = `
return {
	role = "replicator",
	replicas = {
		min = 3,
		max = 7,
	},
	listen = {"0.0.0.0:2130"},
	announce = {"203.0.113.5:2130"},
	storage_dir = "/tmp/peerlog",
	log_level = "debug",
}
`

func writeSample(t *testing.T) string {
	f, err := ioutil.TempFile("", "peerlog-config-*.lua")
	if nil != err {
		t.Fatalf("TempFile: %v", err)
	}
	if _, err := f.WriteString(sample); nil != err {
		t.Fatalf("WriteString: %v", err)
	}
	if err := f.Close(); nil != err {
		t.Fatalf("Close: %v", err)
	}
	return f.Name()
}

func TestParse(t *testing.T) {

	name := writeSample(t)
	defer os.Remove(name)

	c, err := config.Parse(name)
	if nil != err {
		t.Fatalf("Parse: %v", err)
	}

	if "replicator" != c.Role {
		t.Errorf("Role = %q  expected: %q", c.Role, "replicator")
	}
	if 3 != c.Replicas.Min || 7 != c.Replicas.Max {
		t.Errorf("Replicas = %+v  expected: {3 7}", c.Replicas)
	}
	if 1 != len(c.Listen) || "0.0.0.0:2130" != c.Listen[0] {
		t.Errorf("Listen = %v", c.Listen)
	}
	if "/tmp/peerlog" != c.StorageDir {
		t.Errorf("StorageDir = %q", c.StorageDir)
	}
}

func TestParseKeepsDefaultsWhenUnset(t *testing.T) {

	f, err := ioutil.TempFile("", "peerlog-config-*.lua")
	if nil != err {
		t.Fatalf("TempFile: %v", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.WriteString("return {}\n"); nil != err {
		t.Fatalf("WriteString: %v", err)
	}
	f.Close()

	c, err := config.Parse(f.Name())
	if nil != err {
		t.Fatalf("Parse: %v", err)
	}

	if config.DefaultWaitForRoleMaturity != c.WaitForRoleMaturity {
		t.Errorf("WaitForRoleMaturity = %v  expected: %v", c.WaitForRoleMaturity, config.DefaultWaitForRoleMaturity)
	}
	if time.Duration(0) == c.WaitForRoleMaturity {
		t.Errorf("WaitForRoleMaturity must not be zero")
	}
}

func TestParseMissingFile(t *testing.T) {
	if _, err := config.Parse("/nonexistent/path/to/config.lua"); nil == err {
		t.Errorf("expected an error for a missing configuration file")
	}
}
