package policy

import "cipherkeeper/internal/app/server/api/http/apierr"

type putPolicyInput struct {
	apierr.ScopePath
	Body struct {
		Action string `json:"action" enum:"allow,deny" doc:"Разрешить или запретить чтение"`
	}
}

type putPolicyOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}
