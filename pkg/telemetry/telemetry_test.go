package telemetry_test

import (
	"context"
	"testing"

	"github.com/nais/sitedeploy/pkg/deployment"
	"github.com/nais/sitedeploy/pkg/telemetry"
	"github.com/stretchr/testify/assert"
)

func TestTracerWithoutInitialization(t *testing.T) {
	ctx, span := telemetry.Tracer().Start(context.Background(), "test span")
	defer span.End()

	telemetry.AddDeploymentSpanAttributes(span, deployment.Deployment{SiteID: "s1", DeployID: "d1"})

	// the global no-op provider does not record trace IDs
	assert.Equal(t, "", telemetry.TraceID(ctx))
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	provider, err := telemetry.New(ctx, "test", "http://localhost:4318")
	assert.NoError(t, err)
	defer provider.Shutdown(ctx)

	ctx, span := telemetry.Tracer().Start(ctx, "test span")
	defer span.End()
	assert.Len(t, telemetry.TraceID(ctx), 32)
}
