package kube

import (
	"context"
	"errors"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// MetricsServiceLabel marks the service that scrapes object store client
// metrics when a cluster runs more than one Prometheus.
const MetricsServiceLabel = "placefit.io/objectstore-metrics=true"

var ErrNoMetricsService = errors.New("no Prometheus-compatible service found in the cluster; " +
	"use --prometheus-url to specify the endpoint manually")

// DiscoveryResult holds the discovered metrics endpoint.
type DiscoveryResult struct {
	URL         string
	Type        string // "labeled", "prometheus", "thanos", "cortex", "victoria-metrics", "mimir"
	ServiceName string
	Namespace   string
	Port        int32
}

// DiscoveryOptions configures the service discovery search.
type DiscoveryOptions struct {
	Namespace string // empty = search all namespaces
}

// backend describes a metrics backend to search for.
type backend struct {
	name      string
	selectors []string
}

var backends = []backend{
	{name: "labeled", selectors: []string{MetricsServiceLabel}},
	{name: "thanos", selectors: []string{
		"app.kubernetes.io/component=query,app.kubernetes.io/name=thanos",
		"app.kubernetes.io/name=thanos-query",
		"app=thanos-query",
		"app=thanos-querier",
	}},
	{name: "victoria-metrics", selectors: []string{
		"app.kubernetes.io/name=vmsingle",
		"app.kubernetes.io/name=vmselect",
		"app=vmselect",
	}},
	{name: "mimir", selectors: []string{
		"app.kubernetes.io/name=mimir,app.kubernetes.io/component=query-frontend",
	}},
	{name: "cortex", selectors: []string{
		"app.kubernetes.io/name=cortex,app.kubernetes.io/component=query-frontend",
	}},
	{name: "prometheus", selectors: []string{
		"app=kube-prometheus-stack-prometheus",
		"app=prometheus,component=server",
		"app=prometheus-server",
		"app.kubernetes.io/name=prometheus",
	}},
}

// Discover searches the cluster for the Prometheus-compatible service that
// holds object store metrics. A service carrying MetricsServiceLabel wins;
// otherwise well-known selectors are tried in priority order (Thanos,
// VictoriaMetrics, Mimir, Cortex, Prometheus).
func Discover(ctx context.Context, client kubernetes.Interface, opts DiscoveryOptions) (*DiscoveryResult, error) {
	for _, b := range backends {
		for _, selector := range b.selectors {
			svcList, err := client.CoreV1().Services(opts.Namespace).List(ctx, metav1.ListOptions{
				LabelSelector: selector,
			})
			if err != nil || len(svcList.Items) == 0 {
				continue
			}

			svc := svcList.Items[0]
			port := extractPort(svc)
			if port == 0 {
				continue
			}

			return &DiscoveryResult{
				URL:         fmt.Sprintf("http://%s.%s.svc:%d", svc.Name, svc.Namespace, port),
				Type:        b.name,
				ServiceName: svc.Name,
				Namespace:   svc.Namespace,
				Port:        port,
			}, nil
		}
	}

	return nil, ErrNoMetricsService
}

// extractPort returns the best port from a Service, preferring well-known port names.
func extractPort(svc corev1.Service) int32 {
	for _, p := range svc.Spec.Ports {
		switch p.Name {
		case "http", "web", "http-web":
			return p.Port
		}
	}
	for _, p := range svc.Spec.Ports {
		if p.Protocol == corev1.ProtocolTCP || p.Protocol == "" {
			return p.Port
		}
	}
	return 0
}
