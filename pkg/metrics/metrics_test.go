package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveFabrication(t *testing.T) {
	before := testutil.ToFloat64(FabricationsTotal.WithLabelValues(ResultAborted))
	ObserveFabrication(ResultAborted)
	assert.Equal(t, before+1, testutil.ToFloat64(FabricationsTotal.WithLabelValues(ResultAborted)))
}

func TestObserveMovement(t *testing.T) {
	before := testutil.ToFloat64(MovementUnitsTotal.WithLabelValues("entrada"))
	ObserveMovement("entrada", 7)
	assert.Equal(t, before+7, testutil.ToFloat64(MovementUnitsTotal.WithLabelValues("entrada")))
}
