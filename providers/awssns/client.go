package awssns

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Client sends SMS through AWS SNS, as an alternative to TextMagic
type Client struct {
	snsClient *sns.Client
}

// NewClient creates a new SNS client using the default AWS config chain
func NewClient(ctx context.Context) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	return &Client{
		snsClient: sns.NewFromConfig(cfg),
	}, nil
}

// Send publishes one SMS and returns the SNS message ID. SNS requires E.164
// numbers, so a bare digit string gets a leading plus.
func (c *Client) Send(ctx context.Context, address, text string) (string, error) {
	phone := strings.TrimSpace(address)
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}

	out, err := c.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(text),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}
