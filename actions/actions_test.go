package actions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"github.com/segmentio/encoding/json"
	"github.com/spf13/viper"
	"gitlab.com/creatorhub/commission_api/config"
	"gitlab.com/creatorhub/commission_api/model"
	"gitlab.com/creatorhub/commission_api/queries/memory"
	"gitlab.com/creatorhub/commission_api/service"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want bool
	}{
		{
			name: "Success case. Amount with cents",
			arg:  "50.25",
			want: true,
		},
		{
			name: "Success case. Amount without cents",
			arg:  "50",
			want: true,
		},
		{
			name: "Success case. Amount with one fraction digit",
			arg:  "0.5",
			want: true,
		},
		{
			name: "Fail case. Empty amount",
			arg:  "",
			want: false,
		},
		{
			name: "Fail case. Only a dot",
			arg:  ".",
			want: false,
		},
		{
			name: "Fail case. Negative amount",
			arg:  "-10",
			want: false,
		},
		{
			name: "Fail case. Letter in amount",
			arg:  "12q3",
			want: false,
		},
		{
			name: "Fail case. Two dots",
			arg:  "1.2.3",
			want: false,
		},
		{
			name: "Fail case. More than two fraction digits",
			arg:  "1.234",
			want: false,
		},
		{
			name: "Fail case. Too many digits",
			arg:  "12345678901234567",
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := validateAmount(tt.arg)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, *service.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	v := viper.New()
	config.SetDefaults(v)
	cfg := config.LoadConfig(v)
	srv := service.NewService(cfg, memory.New(), nil)
	a := NewActions(cfg, srv)

	r := gin.New()
	r.GET("/referral-codes/:code", a.ValidateReferralCode)
	r.POST("/creators/:creator_id/referral-code", a.IssueReferralCode)
	r.GET("/creators/:creator_id/financials", a.GetFinancials)
	r.POST("/creators/:creator_id/withdrawals", a.RequestWithdrawal)
	r.GET("/network/:username/tree", a.GetNetworkTree)
	r.PUT("/internal/creators/:creator_id", a.RegisterCreator)
	r.POST("/internal/memberships", a.AddMembership)
	r.POST("/internal/payments", a.ProcessPayment)
	return r, srv
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlers(t *testing.T) {
	r, srv := newTestRouter(t)
	ctx := context.Background()

	w := do(r, http.MethodPut, "/internal/creators/id-a", `{"username":"a"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/creators/id-a/referral-code", "")
	assert.Equal(t, http.StatusOK, w.Code)
	code := model.ReferralCodeResponse{}
	assert.Equal(t, nil, json.Unmarshal(w.Body.Bytes(), &code))
	assert.Equal(t, true, strings.HasPrefix(code.Code, "A"))

	w = do(r, http.MethodGet, "/referral-codes/"+strings.ToLower(code.Code), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/referral-codes/NOPE0000", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(r, http.MethodPost, "/internal/memberships", `{"creator_id":"id-b","creator_username":"b","referral_code":"`+code.Code+`"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/internal/memberships", `{"creator_id":"id-b","creator_username":"b","referral_code":"`+code.Code+`"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/internal/memberships", `{"creator_id":"id-c"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/internal/payments", `{"event_id":"pay-1","payee_creator_id":"id-b","gross_amount":10000,"payer_user_id":"fan"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	result := model.CommissionResult{}
	assert.Equal(t, nil, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, int64(8000), result.CreatorShare)
	assert.Equal(t, int64(1000), result.TotalCommission)

	w = do(r, http.MethodPost, "/internal/payments", `{"event_id":"","payee_creator_id":"id-b","gross_amount":10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/network/a/tree?depth=2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	tree := []*model.TreeNode{}
	assert.Equal(t, nil, json.Unmarshal(w.Body.Bytes(), &tree))
	assert.Equal(t, 1, len(tree))
	assert.Equal(t, "b", tree[0].Membership.CreatorUsername)

	w = do(r, http.MethodGet, "/network/ghost/tree", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/creators/id-b/withdrawals", `{"amount":"50.00","request_id":"w-1"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	f, err := srv.GetFinancials(ctx, "id-b")
	assert.Equal(t, nil, err)
	assert.Equal(t, int64(8000-5000), f.AvailableBalance)

	w = do(r, http.MethodPost, "/creators/id-b/withdrawals", `{"amount":"30.01","request_id":"w-2"}`)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	w = do(r, http.MethodPost, "/creators/id-b/withdrawals", `{"amount":"1e5"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/creators/id-a/financials", "")
	assert.Equal(t, http.StatusOK, w.Code)
	financials := model.CreatorFinancials{}
	assert.Equal(t, nil, json.Unmarshal(w.Body.Bytes(), &financials))
	assert.Equal(t, int64(1000), financials.NetworkEarnings)
}
