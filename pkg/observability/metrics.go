package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// CloudWatchAPI is the slice of the CloudWatch client the recorder needs.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// MetricsRecorder publishes counters to CloudWatch. Emission is best-effort:
// failures are logged and swallowed so metrics never break ingestion.
type MetricsRecorder struct {
	client    CloudWatchAPI
	namespace string
	logger    *zap.Logger
}

// NewMetricsRecorder creates a recorder publishing under the namespace.
func NewMetricsRecorder(client CloudWatchAPI, namespace string, logger *zap.Logger) *MetricsRecorder {
	return &MetricsRecorder{client: client, namespace: namespace, logger: logger}
}

// Count emits a single counter datum.
func (m *MetricsRecorder) Count(ctx context.Context, name string, value float64, dimensions map[string]string) {
	dims := make([]cwtypes.Dimension, 0, len(dimensions))
	for k, v := range dimensions {
		dims = append(dims, cwtypes.Dimension{Name: aws.String(k), Value: aws.String(v)})
	}

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(value),
				Unit:       cwtypes.StandardUnitCount,
				Timestamp:  aws.Time(time.Now()),
				Dimensions: dims,
			},
		},
	})
	if err != nil {
		m.logger.Warn("Failed to publish metric",
			zap.String("metric", name),
			zap.Error(err),
		)
	}
}
