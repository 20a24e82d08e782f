package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

type mockCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestMetricsCount(t *testing.T) {
	cw := &mockCloudWatch{}
	m := NewMetrics(cw, "RestaurantAdmin")

	if err := m.Count(context.Background(), MetricStatusUpdated); err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if len(cw.inputs) != 1 {
		t.Fatalf("expected 1 PutMetricData call, got %d", len(cw.inputs))
	}
	in := cw.inputs[0]
	if *in.Namespace != "RestaurantAdmin" {
		t.Fatalf("namespace mismatch: %s", *in.Namespace)
	}
	d := in.MetricData[0]
	if *d.MetricName != MetricStatusUpdated || *d.Value != 1 || d.Unit != cwtypes.StandardUnitCount {
		t.Fatalf("unexpected datum: %+v", d)
	}
}

func TestMetricsCount_Disabled(t *testing.T) {
	cw := &mockCloudWatch{}

	if err := NewMetrics(cw, "").Count(context.Background(), MetricStatusUpdated); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	var nilMetrics *Metrics
	if err := nilMetrics.Count(context.Background(), MetricStatusUpdated); err != nil {
		t.Fatalf("expected no-op on nil metrics, got %v", err)
	}
	if len(cw.inputs) != 0 {
		t.Fatalf("expected no calls, got %d", len(cw.inputs))
	}
}

func TestMetricsCount_Error(t *testing.T) {
	cw := &mockCloudWatch{err: errors.New("throttled")}

	err := NewMetrics(cw, "ns").Count(context.Background(), MetricOrdersFetchFailed)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
