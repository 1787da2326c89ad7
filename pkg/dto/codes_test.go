package dto_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minwoo-song/bankcore/pkg/dto"
)

func TestSuccessReply(t *testing.T) {
	reply := dto.SuccessReply(dto.CodeWithdrawOK)

	assert.True(t, reply.IsSuccess)
	assert.Equal(t, "TRANSFER2002", reply.Code)
	assert.NotEmpty(t, reply.Message)
}

func TestFailureReply(t *testing.T) {
	reply := dto.FailureReply(dto.CodeInsufficientBalance)

	assert.False(t, reply.IsSuccess)
	assert.Equal(t, "TRANSFER4001", reply.Code)
	assert.NotEmpty(t, reply.Message)
}

func TestWithdrawRequestWireShape(t *testing.T) {
	raw := []byte(`{
		"transactionId": "tx-1",
		"withdrawBankCode": "SSOK_BANK",
		"withdrawAccount": "enc-111",
		"transferAmount": 3000,
		"currencyCode": "WON",
		"counterAccount": "enc-222",
		"counterBankCode": "KAKAO_BANK",
		"messageCreatedAt": 1756300000000
	}`)

	var req dto.WithdrawRequest
	require.NoError(t, json.Unmarshal(raw, &req))
	assert.Equal(t, "tx-1", req.TransactionID)
	assert.Equal(t, int64(3000), req.TransferAmount)
	assert.Equal(t, int64(1756300000000), req.MessageCreatedAt)
}

func TestReplyWireShape(t *testing.T) {
	raw, err := json.Marshal(dto.FailureReply(dto.CodeRequestTimeout))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["isSuccess"])
	assert.Equal(t, "COMMON408", decoded["code"])
	assert.Contains(t, decoded, "message")
}
