/*
 * @module service/importer/importer
 * @description 벌크 임포트 서비스 - xlsx/csv 파싱, 헤더 fuzzy 탐지, 병합셀 fill-down, 요구사항 일괄 생성
 * @architecture 분층 아키텍처 - 업무 서비스층
 * @documentReference ai_docs/import_design.md
 * @stateFlow 파일 파싱 -> 헤더 탐지 -> 컬럼 매핑 -> fill-down -> 행 변환 -> 벌크 생성
 * @rules 상위 depth 값이 바뀌면 하위 depth fill-down 상태를 초기화, 상세 없는 행은 구분선으로 간주해 폐기
 * @dependencies github.com/xuri/excelize/v2, golang.org/x/text/encoding/korean, qatrack-service/service/requirement
 * @refs service/requirement/service.go
 */

package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"qatrack-service/service/requirement"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// ErrHeaderNotFound 헤더 행 탐지 실패
var ErrHeaderNotFound = errors.New("헤더 행을 찾을 수 없습니다 (depth/기능/feature 컬럼 필요)")

// Service 벌크 임포트 서비스
type Service struct {
	requirements *requirement.Service
}

// NewService 임포트 서비스 생성
func NewService(requirements *requirement.Service) *Service {
	return &Service{requirements: requirements}
}

// columnMap 헤더에서 해석한 컬럼 위치. -1 은 해당 컬럼 없음.
type columnMap struct {
	depth    [4]int
	feature  int
	spec     int
	priority int
}

// Result 임포트 결과
type Result struct {
	Created int       `json:"created"`
	Skipped int       `json:"skipped"`
	Preview []RowView `json:"preview"`
}

// RowView 프리뷰 행
type RowView struct {
	Depth0      string `json:"depth_0"`
	Depth1      string `json:"depth_1"`
	Depth2      string `json:"depth_2"`
	Depth3      string `json:"depth_3"`
	FeatureName string `json:"feature_name"`
	Spec        string `json:"original_spec"`
}

const previewLimit = 10

// Import 파일을 파싱해 요구사항으로 일괄 생성한다.
func (s *Service) Import(ctx context.Context, systemID, filename string, data []byte) (*Result, error) {
	if systemID == "" {
		return nil, requirement.ErrSystemRequired
	}

	rows, err := ParseFile(filename, data)
	if err != nil {
		return nil, err
	}

	inputs, skipped, err := MapRows(systemID, rows)
	if err != nil {
		return nil, err
	}

	created, err := s.requirements.BulkCreate(ctx, inputs)
	if err != nil {
		return nil, err
	}
	return buildResult(inputs, created, skipped), nil
}

// Preview 파일을 파싱/매핑만 수행하고 저장하지 않는다. 업로드 전 확인용.
func (s *Service) Preview(ctx context.Context, systemID, filename string, data []byte) (*Result, error) {
	if systemID == "" {
		return nil, requirement.ErrSystemRequired
	}

	rows, err := ParseFile(filename, data)
	if err != nil {
		return nil, err
	}

	inputs, skipped, err := MapRows(systemID, rows)
	if err != nil {
		return nil, err
	}
	return buildResult(inputs, 0, skipped), nil
}

func buildResult(inputs []requirement.CreateInput, created, skipped int) *Result {
	result := &Result{Created: created, Skipped: skipped}
	for i, input := range inputs {
		if i >= previewLimit {
			break
		}
		result.Preview = append(result.Preview, RowView{
			Depth0:      deref(input.Depth0),
			Depth1:      deref(input.Depth1),
			Depth2:      deref(input.Depth2),
			Depth3:      deref(input.Depth3),
			FeatureName: deref(input.FeatureName),
			Spec:        deref(input.OriginalSpec),
		})
	}
	return result
}

// ParseFile 확장자에 따라 xlsx 또는 csv 를 행렬로 파싱한다.
func ParseFile(filename string, data []byte) ([][]string, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		return parseXLSX(data)
	}
	return parseCSV(data)
}

func parseXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("xlsx 파일 열기 실패: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("시트가 없습니다")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("시트 읽기 실패: %w", err)
	}
	return rows, nil
}

// parseCSV UTF-8 이 아니면 EUC-KR 로 간주해 변환한다 (엑셀 한국어 CSV 기본 인코딩).
func parseCSV(data []byte) ([][]string, error) {
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("csv 인코딩 변환 실패: %w", err)
		}
		data = decoded
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv 파싱 실패: %w", err)
	}
	return rows, nil
}

// MapRows 헤더 탐지 후 데이터 행을 생성 입력으로 변환한다.
// 반환: 생성 입력, 폐기된 행 수.
func MapRows(systemID string, rows [][]string) ([]requirement.CreateInput, int, error) {
	headerIdx, cols := detectHeader(rows)
	if headerIdx < 0 {
		return nil, 0, ErrHeaderNotFound
	}

	var inputs []requirement.CreateInput
	skipped := 0

	// 병합셀 fill-down 상태 (depth 컬럼별 마지막 비어있지 않은 값)
	var fill [4]string

	for _, row := range rows[headerIdx+1:] {
		var depths [4]string
		for level := 0; level < 4; level++ {
			depths[level] = cellAt(row, cols.depth[level])
		}

		// 상위 depth 가 새 값으로 바뀌면 하위 fill 상태를 비운다
		for level := 0; level < 4; level++ {
			if depths[level] != "" {
				fill[level] = depths[level]
				for lower := level + 1; lower < 4; lower++ {
					fill[lower] = ""
				}
			} else {
				depths[level] = fill[level]
			}
		}

		spec := cellAt(row, cols.spec)
		if spec == "" {
			// 구분선/빈 행
			skipped++
			continue
		}

		input := requirement.CreateInput{
			SystemID:     systemID,
			Depth0:       optional(depths[0]),
			Depth1:       optional(depths[1]),
			Depth2:       optional(depths[2]),
			Depth3:       optional(depths[3]),
			FeatureName:  optional(cellAt(row, cols.feature)),
			OriginalSpec: optional(spec),
			Priority:     optional(cellAt(row, cols.priority)),
		}
		inputs = append(inputs, input)
	}

	return inputs, skipped, nil
}

// detectHeader depth/기능/feature 를 포함한 첫 행을 헤더로 본다.
func detectHeader(rows [][]string) (int, columnMap) {
	for i, row := range rows {
		for _, cell := range row {
			lower := strings.ToLower(strings.TrimSpace(cell))
			if strings.Contains(lower, "depth") ||
				strings.Contains(lower, "기능") ||
				strings.Contains(lower, "feature") {
				return i, mapColumns(row)
			}
		}
	}
	return -1, columnMap{}
}

func mapColumns(header []string) columnMap {
	cols := columnMap{
		depth:    [4]int{-1, -1, -1, -1},
		feature:  -1,
		spec:     -1,
		priority: -1,
	}

	for i, cell := range header {
		lower := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case strings.Contains(lower, "depth"):
			for level := 0; level < 4; level++ {
				if strings.Contains(lower, fmt.Sprintf("%d", level)) {
					cols.depth[level] = i
					break
				}
			}
		case strings.Contains(lower, "기능") || strings.Contains(lower, "feature"):
			if cols.feature < 0 {
				cols.feature = i
			}
		case strings.Contains(lower, "상세") || strings.Contains(lower, "요구사항") || strings.Contains(lower, "spec"):
			if cols.spec < 0 {
				cols.spec = i
			}
		case strings.Contains(lower, "우선순위") || strings.Contains(lower, "priority"):
			if cols.priority < 0 {
				cols.priority = i
			}
		}
	}

	// 상세 컬럼이 없으면 기능 다음 컬럼을 상세로 추정한다
	if cols.spec < 0 && cols.feature >= 0 {
		cols.spec = cols.feature + 1
	}
	return cols
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
