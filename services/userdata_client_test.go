package services

import (
	"context"
	"testing"
	"time"

	"web3-dashboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedNetwork models.Network

func (n fixedNetwork) Network() models.Network { return models.Network(n) }

func testPayload() UserDataPayload {
	return UserDataPayload{
		PersonalData: models.PersonalDataEnvelope{WalletAddress: "0xabc", Data: "likes hiking"},
		AgentModel:   "gpt-4o",
		Prompt:       "summarize",
	}
}

func TestSendUserDataRemote(t *testing.T) {
	remote := newRecordingServer(t, func(string, map[string]any) (int, string) { return 200, `{"success":true}` })
	client := NewUserDataClient(Endpoints{SagaAPIURL: remote.URL}, nil, nil, time.Second, nil, zap.NewNop())
	client.Networks = fixedNetwork(models.NetworkSaga)

	res, err := client.SendUserData(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, "remote", res.Via)
	assert.Nil(t, res.Delegation)

	sent := remote.calls("/user-data/")
	require.Len(t, sent, 1)
	assert.Equal(t, "saga", sent[0]["network"])
	assert.Equal(t, "gpt-4o", sent[0]["agentModel"])
	assert.Equal(t, map[string]any{"walletAddress": "0xabc", "data": "likes hiking"}, sent[0]["personalData"])
}

func TestSendUserDataFallsBackToLocal(t *testing.T) {
	remote := newRecordingServer(t, func(string, map[string]any) (int, string) { return 503, `{"error":"maintenance"}` })
	local := newRecordingServer(t, func(string, map[string]any) (int, string) { return 200, `{"success":true}` })
	client := NewUserDataClient(Endpoints{DashboardAPIURL: remote.URL, LocalAPIURL: local.URL}, nil, nil, time.Second, nil, zap.NewNop())

	res, err := client.SendUserData(context.Background(), testPayload())
	require.NoError(t, err)
	assert.Equal(t, "local", res.Via)
	require.Len(t, local.calls("/api/user-data/"), 1)
	assert.Equal(t, "sepolia", local.calls("/api/user-data/")[0]["network"])
}

func TestSendUserDataBothHopsFail(t *testing.T) {
	remote := newRecordingServer(t, func(string, map[string]any) (int, string) { return 500, `oops` })
	local := newRecordingServer(t, func(string, map[string]any) (int, string) { return 500, `oops` })
	client := NewUserDataClient(Endpoints{DashboardAPIURL: remote.URL, LocalAPIURL: local.URL}, nil, nil, time.Second, nil, zap.NewNop())

	_, err := client.SendUserData(context.Background(), testPayload())
	var failed *SendFailedError
	require.ErrorAs(t, err, &failed)
	assert.Len(t, remote.calls("/user-data/"), 1)
	assert.Len(t, local.calls("/api/user-data/"), 1)
}

func TestSendUserDataRequiresWallet(t *testing.T) {
	client := NewUserDataClient(Endpoints{}, nil, nil, time.Second, nil, zap.NewNop())
	payload := testPayload()
	payload.PersonalData.WalletAddress = " "

	_, err := client.SendUserData(context.Background(), payload)
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestSendUserDataRunsDelegationFlow(t *testing.T) {
	remote := newRecordingServer(t, func(path string, _ map[string]any) (int, string) {
		if path == "/user-data/" {
			return 200, `{"requestId":"req-7","userWalletAddress":"0xabc","userTokenBalance":"10","token":"APL","backendPublicAddress":"0x5555555555555555555555555555555555555555"}`
		}
		return 200, `{"status":"delegated"}`
	})
	auth := &recordingAuthorizer{}
	endpoints := Endpoints{DashboardAPIURL: remote.URL}
	flow := NewDelegationFlow(fixedConfirmer{confirmed: true}, auth, endpoints, nil, time.Second, nil, zap.NewNop())
	client := NewUserDataClient(endpoints, flow, nil, time.Second, nil, zap.NewNop())

	res, err := client.SendUserData(context.Background(), testPayload())
	require.NoError(t, err)
	require.NotNil(t, res.Delegation)
	assert.Equal(t, "req-7", res.Delegation.RequestID)
	assert.True(t, res.Delegation.Authorized)
	assert.Equal(t, []string{"0x5555555555555555555555555555555555555555"}, auth.delegates)
	assert.Len(t, remote.calls("/user-data/"), 1)
	assert.Len(t, remote.calls("/confirm-delegation/"), 1)
}

func TestSendUserDataDeclinedDelegation(t *testing.T) {
	remote := newRecordingServer(t, func(path string, _ map[string]any) (int, string) {
		if path == "/user-data/" {
			return 200, `{"requestId":"req-8","backendPublicAddress":"0x5555555555555555555555555555555555555555"}`
		}
		return 200, `{}`
	})
	auth := &recordingAuthorizer{}
	endpoints := Endpoints{DashboardAPIURL: remote.URL}
	broker := NewConfirmationBroker(20*time.Millisecond, nil, zap.NewNop())
	flow := NewDelegationFlow(broker, auth, endpoints, nil, time.Second, nil, zap.NewNop())
	client := NewUserDataClient(endpoints, flow, nil, time.Second, nil, zap.NewNop())

	res, err := client.SendUserData(context.Background(), testPayload())
	require.NoError(t, err)
	assert.False(t, res.Delegation.Confirmed)
	assert.Empty(t, auth.delegates)
	assert.Equal(t, false, remote.calls("/confirm-delegation/")[0]["confirmed"])
}

func TestSendUserDataNumericFieldsStillDelegate(t *testing.T) {
	remote := newRecordingServer(t, func(path string, _ map[string]any) (int, string) {
		if path == "/user-data/" {
			return 200, `{"requestId":"req-9","userWalletAddress":"0xabc","userTokenBalance":1234.5,"token":"APL","backendPublicAddress":"0x5555555555555555555555555555555555555555"}`
		}
		return 200, `{"status":"delegated"}`
	})
	auth := &recordingAuthorizer{}
	endpoints := Endpoints{DashboardAPIURL: remote.URL}
	flow := NewDelegationFlow(fixedConfirmer{confirmed: true}, auth, endpoints, nil, time.Second, nil, zap.NewNop())
	client := NewUserDataClient(endpoints, flow, nil, time.Second, nil, zap.NewNop())

	res, err := client.SendUserData(context.Background(), testPayload())
	require.NoError(t, err)
	require.NotNil(t, res.Delegation)
	assert.Equal(t, "req-9", res.Delegation.RequestID)
	assert.True(t, res.Delegation.Confirmed)
	require.Len(t, remote.calls("/confirm-delegation/"), 1)
	assert.Equal(t, "req-9", remote.calls("/confirm-delegation/")[0]["request_id"])
	assert.Equal(t, []string{"0x5555555555555555555555555555555555555555"}, auth.delegates)
}

func TestDelegationRequest(t *testing.T) {
	data, ok := delegationRequest([]byte(`{"requestId":42,"userTokenBalance":1234.5,"token":"APL"}`))
	require.True(t, ok)
	assert.Equal(t, "42", data.RequestID)
	assert.Equal(t, "1234.5", data.UserTokenBalance)
	assert.Equal(t, "APL", data.Token)

	for _, body := range []string{
		`{"success":true}`,
		`{"requestId":""}`,
		`{"requestId":null}`,
		`{"requestId":true}`,
		`not json`,
	} {
		_, ok := delegationRequest([]byte(body))
		assert.False(t, ok, body)
	}
}

func TestGetWalletData(t *testing.T) {
	local := newRecordingServer(t, func(string, map[string]any) (int, string) {
		return 200, `{"data":{"personalData":"{\"walletAddress\":\"0xabc\",\"data\":\"hello\"}"}}`
	})
	client := NewUserDataClient(Endpoints{LocalAPIURL: local.URL}, nil, nil, time.Second, nil, zap.NewNop())

	res := client.GetWalletData(context.Background(), "0xabc", "")
	assert.Equal(t, "hello", res.Normalized.Data)
	assert.True(t, res.Normalized.Enveloped)
}

func TestGetWalletDataNeverFails(t *testing.T) {
	client := NewUserDataClient(Endpoints{LocalAPIURL: "http://127.0.0.1:1"}, nil, nil, time.Second, nil, zap.NewNop())

	res := client.GetWalletData(context.Background(), "0xabc", models.NetworkSaga)
	assert.Empty(t, res.PersonalData)
}

func TestExtractPersonalData(t *testing.T) {
	assert.Equal(t, "top", extractPersonalData([]byte(`{"personalData":"top"}`)))
	assert.Equal(t, "nested", extractPersonalData([]byte(`{"data":{"personalData":"nested"}}`)))
	assert.Equal(t, `{"a":1}`, extractPersonalData([]byte(`{"personalData":{"a":1}}`)))
	assert.Empty(t, extractPersonalData([]byte(`{"message":"Wallet not found","personalData":""}`)))
	assert.Empty(t, extractPersonalData([]byte(`not json`)))
}
