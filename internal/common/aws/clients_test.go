package aws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClients_NoneEnabled(t *testing.T) {
	c, err := NewClients(context.Background(), "us-east-1", false, false)
	require.NoError(t, err)
	assert.Nil(t, c.SES)
	assert.Nil(t, c.SNS)
}

func TestNewClients_SelectsEnabled(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	c, err := NewClients(context.Background(), "eu-west-1", false, true)
	require.NoError(t, err)
	assert.Nil(t, c.SES)
	require.NotNil(t, c.SNS)
	assert.Equal(t, "eu-west-1", c.SNS.Options().Region)
}
