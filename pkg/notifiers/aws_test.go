package notifiers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-456")}, nil
}

func TestSQSNotifierSendsEvent(t *testing.T) {
	client := &fakeSQSClient{}
	n := &sqsNotifier{id: "queue", queueURL: "https://example.com/queue", client: client, log: noopLogger{}}

	err := n.Notify(context.Background(), CommandEvent{RobotID: "42", CommandType: "open_vpn"})
	if err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://example.com/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := client.input.MessageAttributes["robot_id"]
	if !ok || aws.ToString(attr.StringValue) != "42" || aws.ToString(attr.DataType) != "String" {
		t.Fatalf("robot_id attribute missing or wrong: %#v", attr)
	}
	if !strings.Contains(aws.ToString(client.input.MessageBody), `"command_type":"open_vpn"`) {
		t.Fatalf("MessageBody missing command type: %s", aws.ToString(client.input.MessageBody))
	}
}

func TestSQSNotifierSkipsEmptyAttributes(t *testing.T) {
	client := &fakeSQSClient{}
	n := &sqsNotifier{id: "queue", queueURL: "q", client: client, log: noopLogger{}}

	if err := n.Notify(context.Background(), CommandEvent{CommandType: "close_vpn"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if _, ok := client.input.MessageAttributes["robot_id"]; ok {
		t.Fatalf("empty robot_id should not be sent as attribute")
	}
}

func TestSQSNotifierSendError(t *testing.T) {
	n := &sqsNotifier{id: "queue", queueURL: "q", client: &fakeSQSClient{err: errors.New("boom")}, log: noopLogger{}}
	if err := n.Notify(context.Background(), CommandEvent{RobotID: "1"}); err == nil {
		t.Fatalf("expected error from Notify")
	}
}

func TestSNSNotifierPublishesEvent(t *testing.T) {
	client := &fakeSNSClient{}
	n := &snsNotifier{id: "topic", topicARN: "arn:aws:sns:::fleet", client: client, log: noopLogger{}}

	err := n.Notify(context.Background(), CommandEvent{RobotID: "7", CommandType: "power_control"})
	if err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if got := aws.ToString(client.input.TopicArn); got != "arn:aws:sns:::fleet" {
		t.Fatalf("TopicArn = %s", got)
	}
	attr, ok := client.input.MessageAttributes["command_type"]
	if !ok || aws.ToString(attr.StringValue) != "power_control" {
		t.Fatalf("command_type attribute missing or wrong: %#v", attr)
	}
	if !strings.Contains(aws.ToString(client.input.Message), `"robot_id":"7"`) {
		t.Fatalf("Message missing robot id: %s", aws.ToString(client.input.Message))
	}
}

func TestSNSNotifierPublishError(t *testing.T) {
	n := &snsNotifier{id: "topic", topicARN: "arn", client: &fakeSNSClient{err: errors.New("boom")}, log: noopLogger{}}
	if err := n.Notify(context.Background(), CommandEvent{RobotID: "1"}); err == nil {
		t.Fatalf("expected error from Notify")
	}
}

func TestSQSNotifierBuildsWithStaticCredentials(t *testing.T) {
	n, err := newSQSNotifier(context.Background(), NotifierConfig{
		ID:   "queue",
		Type: TypeSQS,
		SQS: &SQSConfig{
			QueueURL:    "https://sqs.eu-west-1.amazonaws.com/1/fleet",
			Region:      "eu-west-1",
			Credentials: &AWSCredentials{AccessKeyID: "AKID", SecretAccessKey: "secret"},
		},
	}, nil)
	if err != nil {
		t.Fatalf("newSQSNotifier: %v", err)
	}
	if n.Type() != TypeSQS || n.ID() != "queue" {
		t.Fatalf("unexpected notifier %s/%s", n.Type(), n.ID())
	}
}
