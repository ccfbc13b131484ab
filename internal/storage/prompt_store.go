package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// maxPromptSize bounds the instruction object read from S3
const maxPromptSize = 64 * 1024

// PromptStore provides the classifier instruction
type PromptStore interface {
	GetInstruction(ctx context.Context) (string, error)
}

// S3GetObjectAPI is the part of *s3.Client used by S3PromptStore
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3PromptStore reads the classifier instruction from a single S3 object
type S3PromptStore struct {
	client     S3GetObjectAPI
	bucketName string
	key        string
}

// NewS3PromptStore creates a new S3PromptStore instance
func NewS3PromptStore(client S3GetObjectAPI, bucketName, key string) *S3PromptStore {
	return &S3PromptStore{
		client:     client,
		bucketName: bucketName,
		key:        key,
	}
}

// GetInstruction returns the trimmed object body. An empty object is an error.
func (s *S3PromptStore) GetInstruction(ctx context.Context) (string, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get instruction from S3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(io.LimitReader(result.Body, maxPromptSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read instruction object: %w", err)
	}
	if len(data) > maxPromptSize {
		return "", fmt.Errorf("instruction object s3://%s/%s exceeds %d bytes", s.bucketName, s.key, maxPromptSize)
	}

	instruction := strings.TrimSpace(string(data))
	if instruction == "" {
		return "", fmt.Errorf("instruction object s3://%s/%s is empty", s.bucketName, s.key)
	}
	return instruction, nil
}
