package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/guimove/placefit/internal/kube"
	"github.com/guimove/placefit/internal/metrics"
)

// resolveCollector creates a WorkloadCollector from, in order: a static
// workloads file, the explicit --prometheus-url, or a Prometheus-compatible
// service auto-discovered in the Kubernetes cluster.
//
// When running outside the cluster (kubeconfig mode), it sets up a
// port-forward tunnel to the discovered service. The returned cleanup
// function closes the tunnel; it is nil when no tunnel was created.
func resolveCollector(ctx context.Context, inputPath string) (metrics.WorkloadCollector, func(), error) {
	if inputPath != "" {
		return metrics.NewStaticCollector(inputPath), nil, nil
	}

	// Explicit URL takes precedence
	if cfg.Prometheus.URL != "" {
		c, err := metrics.NewPrometheusCollector(cfg.Prometheus.URL,
			metrics.WithTimeout(cfg.Prometheus.Timeout))
		return c, nil, err
	}

	if !cfg.Kubernetes.Enabled {
		return nil, nil, fmt.Errorf("provide --input, --prometheus-url, or use --discover to auto-detect the metrics endpoint")
	}

	conn, err := kube.Connect(cfg.Kubernetes.Kubeconfig, cfg.Kubernetes.Context)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to Kubernetes: %w", err)
	}

	result, err := kube.Discover(ctx, conn.Client, kube.DiscoveryOptions{
		Namespace: cfg.Kubernetes.DiscoveryNamespace,
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info("discovered metrics service",
		zap.String("type", result.Type),
		zap.String("url", result.URL),
		zap.String("service", result.Namespace+"/"+result.ServiceName),
		zap.String("context", conn.Context))

	promURL := result.URL
	var cleanup func()

	if !conn.InCluster {
		// Service DNS does not resolve from outside the cluster
		podName, podPort, err := kube.FindPodForService(ctx, conn.Client, result.ServiceName, result.Namespace, result.Port)
		if err != nil {
			return nil, nil, fmt.Errorf("finding pod for port-forward: %w", err)
		}

		session, err := kube.StartPortForward(conn.RESTConfig, conn.Client, podName, result.Namespace, podPort)
		if err != nil {
			return nil, nil, fmt.Errorf("starting port-forward: %w", err)
		}

		promURL = fmt.Sprintf("http://127.0.0.1:%d", session.LocalPort)
		cleanup = session.Close

		logger.Info("port-forwarding metrics service",
			zap.String("pod", podName),
			zap.Int32("pod_port", podPort),
			zap.String("url", promURL))
	}

	c, err := metrics.NewPrometheusCollector(promURL,
		metrics.WithTimeout(cfg.Prometheus.Timeout))
	if err != nil {
		if cleanup != nil {
			cleanup()
		}
		return nil, nil, err
	}
	return c, cleanup, nil
}
