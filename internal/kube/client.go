package kube

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Connection is a Kubernetes clientset with the config it was built from.
type Connection struct {
	Client     *kubernetes.Clientset
	RESTConfig *rest.Config
	Context    string // kube context name; empty in-cluster
	InCluster  bool
}

// Connect creates a Kubernetes clientset using the following resolution order:
// 1. Explicit kubeconfig path (--kubeconfig flag)
// 2. KUBECONFIG environment variable
// 3. ~/.kube/config default
// 4. In-cluster config (when running as a pod)
func Connect(kubeconfig, context string) (*Connection, error) {
	conn, err := buildConfig(kubeconfig, context)
	if err != nil {
		return nil, fmt.Errorf("building kubernetes config: %w", err)
	}

	client, err := kubernetes.NewForConfig(conn.RESTConfig)
	if err != nil {
		return nil, fmt.Errorf("creating kubernetes client: %w", err)
	}
	conn.Client = client
	return conn, nil
}

func resolveKubeconfigPath(kubeconfig string) string {
	if kubeconfig != "" {
		return kubeconfig
	}
	if env := os.Getenv("KUBECONFIG"); env != "" {
		return env
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	defaultPath := filepath.Join(home, ".kube", "config")
	if _, err := os.Stat(defaultPath); err != nil {
		return ""
	}
	return defaultPath
}

func buildConfig(kubeconfig, context string) (*Connection, error) {
	path := resolveKubeconfigPath(kubeconfig)
	if path == "" {
		restConfig, err := rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("no kubeconfig found and not running in-cluster: %w", err)
		}
		return &Connection{RESTConfig: restConfig, InCluster: true}, nil
	}

	rules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: path}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: context}
	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides)

	rawConfig, err := clientConfig.RawConfig()
	if err != nil {
		return nil, err
	}
	current := rawConfig.CurrentContext
	if context != "" {
		current = context
	}

	restConfig, err := clientConfig.ClientConfig()
	if err != nil {
		return nil, err
	}
	return &Connection{RESTConfig: restConfig, Context: current}, nil
}
