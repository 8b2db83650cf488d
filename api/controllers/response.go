package controllers

// APIResponse 통일 API 응답 구조
type APIResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"처리 성공"`
	Data   interface{} `json:"data,omitempty"`
}

// PaginatedResponse 페이지네이션 응답 구조
type PaginatedResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"처리 성공"`
	Data   interface{} `json:"data"`
	Total  int64       `json:"total" example:"100"`
	Page   int         `json:"page" example:"1"`
	Size   int         `json:"size" example:"10"`
}

// SuccessResponse 성공 응답 생성
func SuccessResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: 0, Msg: msg, Data: data}
}

// BadRequestResponse 요청 오류 응답 생성
func BadRequestResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: 400, Msg: msg, Data: data}
}

// NotFoundResponse 미존재 응답 생성
func NotFoundResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: 404, Msg: msg, Data: data}
}

// TooManyRequestsResponse 한도 초과 응답 생성
func TooManyRequestsResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: 429, Msg: msg, Data: data}
}

// InternalErrorResponse 서버 오류 응답 생성
func InternalErrorResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: 500, Msg: msg, Data: data}
}
