package kube

import (
	"os"
	"path/filepath"
	"testing"
)

const testKubeconfig = `apiVersion: v1
kind: Config
clusters:
- name: storage
  cluster:
    server: https://127.0.0.1:6443
contexts:
- name: storage-admin
  context:
    cluster: storage
    user: admin
- name: storage-ro
  context:
    cluster: storage
    user: admin
current-context: storage-admin
users:
- name: admin
  user:
    token: secret
`

func writeKubeconfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte(testKubeconfig), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConnect_Kubeconfig(t *testing.T) {
	path := writeKubeconfig(t)

	tests := []struct {
		name        string
		context     string
		wantContext string
	}{
		{"current context", "", "storage-admin"},
		{"explicit context", "storage-ro", "storage-ro"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := Connect(path, tt.context)
			if err != nil {
				t.Fatalf("Connect failed: %v", err)
			}
			if conn.Context != tt.wantContext || conn.InCluster {
				t.Errorf("got context %q inCluster %v", conn.Context, conn.InCluster)
			}
			if conn.RESTConfig.Host != "https://127.0.0.1:6443" {
				t.Errorf("unexpected host %q", conn.RESTConfig.Host)
			}
		})
	}
}

func TestResolveKubeconfigPath_Env(t *testing.T) {
	t.Setenv("KUBECONFIG", "/tmp/from-env")
	if got := resolveKubeconfigPath(""); got != "/tmp/from-env" {
		t.Errorf("resolveKubeconfigPath() = %q", got)
	}
	if got := resolveKubeconfigPath("/explicit"); got != "/explicit" {
		t.Errorf("explicit path should win, got %q", got)
	}
}
