package bookstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestClassifyConnectivity(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"deadline", context.DeadlineExceeded},
		{"disconnected", mongo.ErrClientDisconnected},
		{"network label", mongo.CommandError{Code: 6, Message: "host unreachable", Labels: []string{"NetworkError"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("find", ByGenre("Fiction"), tt.err)
			assert.True(t, IsConnectionError(err))
			assert.ErrorContains(t, err, "find: ")

			var qe *QueryError
			assert.False(t, errors.As(err, &qe))
		})
	}
}

func TestClassifyQueryError(t *testing.T) {
	cause := mongo.CommandError{Code: 2, Message: "unknown operator: $gtx"}
	filter := bson.D{{Key: "published_year", Value: bson.D{{Key: "$gtx", Value: 1950}}}}

	err := classify("find", filter, cause)
	require.Error(t, err)
	assert.False(t, IsConnectionError(err))

	var qe *QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, "find", qe.Op)
	assert.Equal(t, filter, qe.Params)
	assert.Contains(t, err.Error(), `"$gtx":1950`)
	assert.Contains(t, err.Error(), "unknown operator")

	var ce mongo.CommandError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, int32(2), ce.Code)
}

func TestClassifyNil(t *testing.T) {
	assert.NoError(t, classify("find", nil, nil))
}

func TestFormatParams(t *testing.T) {
	assert.Equal(t, "{}", FormatParams(nil))
	assert.Equal(t, `{"title":"Moby Dick"}`, FormatParams(ByTitle("Moby Dick")))
}
