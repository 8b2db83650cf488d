/*
 * @module service/importer/importer_test
 * @description 벌크 임포트 파싱/매핑 단위 테스트 - 헤더 탐지, fill-down, 행 폐기
 * @architecture 테스트층 - 단위 테스트
 */

package importer

import (
	"testing"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapRows_HeaderDetectionSkipsPreamble(t *testing.T) {
	rows := [][]string{
		{"도매랑 QA 시트"},
		{""},
		{"0Depth", "1Depth", "2Depth", "3Depth", "기능", "상세"},
		{"주문", "주문생성", "", "", "장바구니 담기", "상품을 장바구니에 담는다"},
	}

	inputs, skipped, err := MapRows("s1", rows)
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, "주문", *inputs[0].Depth0)
	assert.Equal(t, "장바구니 담기", *inputs[0].FeatureName)
}

func TestMapRows_NoHeaderFails(t *testing.T) {
	rows := [][]string{
		{"아무", "관련없는", "내용"},
	}

	_, _, err := MapRows("s1", rows)
	assert.ErrorIs(t, err, ErrHeaderNotFound)
}

func TestMapRows_FillDownMergedCells(t *testing.T) {
	rows := [][]string{
		{"0Depth", "1Depth", "기능", "상세"},
		{"주문", "주문생성", "담기", "스펙 1"},
		{"", "", "수량변경", "스펙 2"},       // 병합셀: 둘 다 이어받는다
		{"", "주문취소", "취소요청", "스펙 3"}, // depth_1 갱신, depth_0 은 유지
		{"정산", "", "내역조회", "스펙 4"},   // 상위 갱신 -> 하위 초기화
	}

	inputs, _, err := MapRows("s1", rows)
	require.NoError(t, err)
	require.Len(t, inputs, 4)

	assert.Equal(t, "주문", *inputs[1].Depth0)
	assert.Equal(t, "주문생성", *inputs[1].Depth1)

	assert.Equal(t, "주문", *inputs[2].Depth0)
	assert.Equal(t, "주문취소", *inputs[2].Depth1)

	// 상위 depth 갱신이 하위 fill 상태를 비운다
	assert.Equal(t, "정산", *inputs[3].Depth0)
	assert.Nil(t, inputs[3].Depth1)
}

func TestMapRows_DiscardsRowsWithoutSpec(t *testing.T) {
	rows := [][]string{
		{"0Depth", "기능", "상세"},
		{"주문", "담기", "스펙 1"},
		{"주문", "구분선용 행", ""}, // 상세 없음, 폐기
		{"", "", ""},
		{"주문", "취소", "스펙 2"},
	}

	inputs, skipped, err := MapRows("s1", rows)
	require.NoError(t, err)
	assert.Len(t, inputs, 2)
	assert.Equal(t, 2, skipped)
}

func TestParseFile_CSVUTF8(t *testing.T) {
	data := []byte("0Depth,기능,상세\n주문,담기,상품을 담는다\n")

	rows, err := ParseFile("upload.csv", data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "주문", rows[1][0])
}

func TestParseFile_CSVEUCKR(t *testing.T) {
	utf8Data := "0Depth,기능,상세\n주문,담기,상품을 담는다\n"
	encoded, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(utf8Data))
	require.NoError(t, err)

	rows, err := ParseFile("upload.csv", encoded)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "주문", rows[1][0])
	assert.Equal(t, "상품을 담는다", rows[1][2])
}
