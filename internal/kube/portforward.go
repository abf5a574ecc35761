package kube

import (
	"context"
	"fmt"
	"io"
	"net/http"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/portforward"
	"k8s.io/client-go/transport/spdy"
)

// PortForwardSession is an open tunnel from a local port to a pod.
type PortForwardSession struct {
	LocalPort int32
	PodName   string
	stopChan  chan struct{}
}

// Close terminates the tunnel.
func (s *PortForwardSession) Close() {
	close(s.stopChan)
}

// FindPodForService picks a running pod behind the service and returns it with
// the container port that serves svcPort.
func FindPodForService(ctx context.Context, client kubernetes.Interface, svcName, namespace string, svcPort int32) (string, int32, error) {
	svc, err := client.CoreV1().Services(namespace).Get(ctx, svcName, metav1.GetOptions{})
	if err != nil {
		return "", 0, fmt.Errorf("getting service %s/%s: %w", namespace, svcName, err)
	}
	if len(svc.Spec.Selector) == 0 {
		return "", 0, fmt.Errorf("service %s/%s has no pod selector", namespace, svcName)
	}

	var matched *corev1.ServicePort
	for i := range svc.Spec.Ports {
		if svc.Spec.Ports[i].Port == svcPort {
			matched = &svc.Spec.Ports[i]
			break
		}
	}
	if matched == nil {
		return "", 0, fmt.Errorf("service %s/%s has no port %d", namespace, svcName, svcPort)
	}

	pods, err := client.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
		LabelSelector: metav1.FormatLabelSelector(&metav1.LabelSelector{MatchLabels: svc.Spec.Selector}),
	})
	if err != nil {
		return "", 0, fmt.Errorf("listing pods for service %s/%s: %w", namespace, svcName, err)
	}

	for i := range pods.Items {
		pod := &pods.Items[i]
		if pod.Status.Phase == corev1.PodRunning && pod.DeletionTimestamp == nil {
			return pod.Name, resolveTargetPort(*matched, pod), nil
		}
	}
	return "", 0, fmt.Errorf("no running pod found for service %s/%s", namespace, svcName)
}

// resolveTargetPort maps a service port to the container port: a numeric
// targetPort is used as is, a named one is looked up in the pod's containers,
// and anything else falls back to the service port.
func resolveTargetPort(sp corev1.ServicePort, pod *corev1.Pod) int32 {
	tp := sp.TargetPort
	if tp.IntValue() != 0 {
		return int32(tp.IntValue())
	}

	if name := tp.String(); name != "" && name != "0" {
		for _, c := range pod.Spec.Containers {
			for _, cp := range c.Ports {
				if cp.Name == name {
					return cp.ContainerPort
				}
			}
		}
	}
	return sp.Port
}

// StartPortForward opens a tunnel from a random local port to podPort and
// blocks until it is ready.
func StartPortForward(restConfig *rest.Config, client kubernetes.Interface, podName, namespace string, podPort int32) (*PortForwardSession, error) {
	transport, upgrader, err := spdy.RoundTripperFor(restConfig)
	if err != nil {
		return nil, fmt.Errorf("creating SPDY round-tripper: %w", err)
	}

	reqURL := client.CoreV1().RESTClient().Post().
		Resource("pods").
		Namespace(namespace).
		Name(podName).
		SubResource("portforward").
		URL()

	dialer := spdy.NewDialer(upgrader, &http.Client{Transport: transport}, http.MethodPost, reqURL)

	stopChan := make(chan struct{}, 1)
	readyChan := make(chan struct{})

	fw, err := portforward.New(dialer, []string{fmt.Sprintf("0:%d", podPort)}, stopChan, readyChan, io.Discard, io.Discard)
	if err != nil {
		return nil, fmt.Errorf("creating port-forwarder: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- fw.ForwardPorts()
	}()

	select {
	case <-readyChan:
	case err := <-errChan:
		return nil, fmt.Errorf("port-forward failed: %w", err)
	}

	forwarded, err := fw.GetPorts()
	if err != nil {
		close(stopChan)
		return nil, fmt.Errorf("getting forwarded ports: %w", err)
	}

	return &PortForwardSession{
		LocalPort: int32(forwarded[0].Local),
		PodName:   podName,
		stopChan:  stopChan,
	}, nil
}
