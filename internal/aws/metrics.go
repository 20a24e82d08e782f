package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names emitted by the service.
const (
	MetricStatusUpdated      = "StatusUpdated"
	MetricStatusUpdateFailed = "StatusUpdateFailed"
	MetricOrdersFetchFailed  = "OrdersFetchFailed"
)

// Metrics wraps a CloudWatch client and a namespace.
// A nil Metrics or an empty namespace turns every call into a no-op.
type Metrics struct {
	CloudWatch CloudWatchAPI
	Namespace  string
}

// NewMetrics returns a Metrics bound to a namespace.
func NewMetrics(cw CloudWatchAPI, namespace string) *Metrics {
	return &Metrics{
		CloudWatch: cw,
		Namespace:  namespace,
	}
}

// Count records a single occurrence of name.
func (m *Metrics) Count(ctx context.Context, name string) error {
	if m == nil || m.CloudWatch == nil || m.Namespace == "" {
		return nil
	}

	_, err := m.CloudWatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &m.Namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: sdkaws.String(name),
				Value:      sdkaws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("put metric %s: %w", name, err)
	}
	return nil
}
