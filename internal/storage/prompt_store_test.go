package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	body  string
	err   error
	input *s3.GetObjectInput
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestGetInstruction(t *testing.T) {
	client := &fakeS3{body: "\n  Watch for payroll questions.  \n"}
	store := NewS3PromptStore(client, "relay-config", "prompts/classifier.txt")

	instruction, err := store.GetInstruction(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Watch for payroll questions.", instruction)
	assert.Equal(t, "relay-config", *client.input.Bucket)
	assert.Equal(t, "prompts/classifier.txt", *client.input.Key)
}

func TestGetInstruction_Errors(t *testing.T) {
	cases := map[string]*fakeS3{
		"get fails": {err: errors.New("NoSuchKey")},
		"empty":     {body: "   "},
		"too large": {body: strings.Repeat("x", maxPromptSize+1)},
	}
	for name, client := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewS3PromptStore(client, "b", "k").GetInstruction(context.Background())
			assert.Error(t, err)
		})
	}
}
