package agent

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatModel struct {
	answer   string
	received []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.received = input
	return schema.AssistantMessage(f.answer, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.received = input
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage(f.answer, nil)}), nil
}

func (f *fakeChatModel) BindTools([]*schema.ToolInfo) error { return nil }

func TestServiceReplyKeepsFirstLine(t *testing.T) {
	fake := &fakeChatModel{answer: "\ntrade: long, allocation: 30%, stoploss: $52000, takeprofit: $59000, sentiment: 78%\nextra chatter"}
	svc, err := NewServiceWithModel(context.Background(), fake)
	require.NoError(t, err)

	reply, err := svc.Reply(context.Background(), "fais un trade")
	require.NoError(t, err)
	assert.Equal(t, "trade: long, allocation: 30%, stoploss: $52000, takeprofit: $59000, sentiment: 78%", reply)

	require.Len(t, fake.received, 2)
	assert.Equal(t, schema.System, fake.received[0].Role)
	assert.Equal(t, schema.User, fake.received[1].Role)
	assert.Equal(t, "fais un trade", fake.received[1].Content)
}

func TestServiceReplyEmptyAnswerWaits(t *testing.T) {
	svc, err := NewServiceWithModel(context.Background(), &fakeChatModel{answer: "  \n "})
	require.NoError(t, err)

	reply, err := svc.Reply(context.Background(), "fais un trade")
	require.NoError(t, err)
	assert.Equal(t, WaitReply, reply)
}

func TestParseTrade(t *testing.T) {
	trade, err := ParseTrade("trade: SHORT, allocation: 12.5%, stoploss: $61000, takeprofit: $55000.5, sentiment: 81%")
	require.NoError(t, err)
	assert.Equal(t, Trade{Side: "short", Allocation: 12.5, StopLoss: 61000, TakeProfit: 55000.5, Sentiment: 81}, trade)

	_, err = ParseTrade("trade: wait")
	assert.Error(t, err)
}

func TestStaticReplier(t *testing.T) {
	reply, err := StaticReplier(WaitReply).Reply(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "trade: wait", reply)
}
