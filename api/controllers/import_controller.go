/*
 * @module api/controllers/import_controller
 * @description 벌크 임포트 API 컨트롤러 - 스프레드시트 업로드와 요구사항 일괄 생성
 * @architecture MVC 아키텍처 - 컨트롤러층
 * @documentReference ai_docs/import_design.md
 * @stateFlow multipart 수신 -> 임포터 위임 -> 생성 건수/프리뷰 응답
 * @rules 업로드 크기는 10MB 로 제한한다
 * @dependencies qatrack-service/service, github.com/go-chi/render
 * @refs service/importer/importer.go
 */

package controllers

import (
	"io"
	"net/http"

	"qatrack-service/service"
	"qatrack-service/service/importer"

	"github.com/go-chi/render"
)

const maxUploadSize = 10 << 20

// ImportController 벌크 임포트 컨트롤러
type ImportController struct {
	service *importer.Service
}

// NewImportController 임포트 컨트롤러 생성
func NewImportController() *ImportController {
	return &ImportController{service: service.GlobalImportService}
}

// readUpload multipart 요청에서 system_id 와 업로드 파일 내용을 꺼낸다.
func readUpload(w http.ResponseWriter, r *http.Request) (systemID, filename string, data []byte, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		render.JSON(w, r, BadRequestResponse("업로드 파일이 너무 크거나 형식이 잘못되었습니다", nil))
		return "", "", nil, false
	}

	systemID = r.FormValue("system_id")
	file, header, err := r.FormFile("file")
	if err != nil {
		render.JSON(w, r, BadRequestResponse("file 필드가 필요합니다", nil))
		return "", "", nil, false
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		render.JSON(w, r, InternalErrorResponse("파일 읽기 실패", nil))
		return "", "", nil, false
	}
	return systemID, header.Filename, data, true
}

// ImportRequirements 스프레드시트 임포트
// @Summary 요구사항 스프레드시트 임포트
// @Tags 임포트
// @Accept multipart/form-data
// @Produce json
// @Param system_id formData string true "대상 시스템 ID"
// @Param file formData file true "xlsx 또는 csv 파일"
// @Success 200 {object} APIResponse{data=importer.Result}
// @Failure 400 {object} APIResponse
// @Router /import/requirements [post]
func (c *ImportController) ImportRequirements(w http.ResponseWriter, r *http.Request) {
	systemID, filename, data, ok := readUpload(w, r)
	if !ok {
		return
	}

	result, err := c.service.Import(r.Context(), systemID, filename, data)
	if err != nil {
		render.JSON(w, r, BadRequestResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("임포트 성공", result))
}

// PreviewRequirements 임포트 미리보기 (저장 없음)
// @Summary 요구사항 임포트 미리보기
// @Tags 임포트
// @Accept multipart/form-data
// @Produce json
// @Param system_id formData string true "대상 시스템 ID"
// @Param file formData file true "xlsx 또는 csv 파일"
// @Success 200 {object} APIResponse{data=importer.Result}
// @Failure 400 {object} APIResponse
// @Router /import/requirements/preview [post]
func (c *ImportController) PreviewRequirements(w http.ResponseWriter, r *http.Request) {
	systemID, filename, data, ok := readUpload(w, r)
	if !ok {
		return
	}

	result, err := c.service.Preview(r.Context(), systemID, filename, data)
	if err != nil {
		render.JSON(w, r, BadRequestResponse(err.Error(), nil))
		return
	}
	render.JSON(w, r, SuccessResponse("미리보기 성공", result))
}
