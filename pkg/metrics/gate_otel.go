package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// 闸门相关指标
var (
	gateDecisionTotal   metric.Int64Counter
	gateEvalDuration    metric.Float64Histogram
	signalFailureTotal  metric.Int64Counter
	pathTransitionTotal metric.Int64Counter
)

// InitGateMetrics 初始化闸门指标
func InitGateMetrics(meter metric.Meter) error {
	var err error

	gateDecisionTotal, err = meter.Int64Counter(
		"gate.decisions.total",
		metric.WithDescription("Total number of progression gate decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return err
	}

	gateEvalDuration, err = meter.Float64Histogram(
		"gate.evaluation.duration",
		metric.WithDescription("Progression gate evaluation duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return err
	}

	signalFailureTotal, err = meter.Int64Counter(
		"gate.signal.failures.total",
		metric.WithDescription("Signal sub-fetches that degraded to their default"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return err
	}

	pathTransitionTotal, err = meter.Int64Counter(
		"path.transitions.total",
		metric.WithDescription("Guided path state machine transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// RecordGateDecision 记录一次闸门裁决
func RecordGateDecision(ctx context.Context, state, stage string, elapsed time.Duration) {
	if gateDecisionTotal == nil {
		return // 指标未初始化（测试/worker 场景），静默跳过
	}

	labels := metric.WithAttributes(
		attribute.String("gate.state", state),
		attribute.String("gate.stage", stage),
	)

	gateDecisionTotal.Add(ctx, 1, labels)
	gateEvalDuration.Record(ctx, elapsed.Seconds(), labels)
}

// RecordSignalFailure 记录一次信号降级
func RecordSignalFailure(ctx context.Context, signal string) {
	if signalFailureTotal == nil {
		return
	}

	signalFailureTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("gate.signal", signal),
	))
}

// RecordPathTransition 记录一次路径状态转移
func RecordPathTransition(ctx context.Context, transition string) {
	if pathTransitionTotal == nil {
		return
	}

	pathTransitionTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("path.transition", transition),
	))
}
