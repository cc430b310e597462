// Package extract runs the per-file OCR extraction loop: it feeds masked
// PDFs to a vision model, validates the structured response, and streams
// rows into a sheet backend.
package extract

import (
	"fmt"
	"strings"
)

// MissingValue marks a field the model did not return.
const MissingValue = "N/A"

// Fields is the extraction schema in output column order. The names are
// the labels as they appear on the Korean tax guidance documents.
var Fields = []string{
	"성명", "생년월일", "안내유형", "기장의무", "추계시 적용경비율",
	"소득종류", "이자", "배당", "근로-단일", "근로-복수",
	"연금", "기타", "종교인 기타소득유무", "중간예납세액", "원천징수세액",
	"국민연금보험료", "개인연금저축", "소기업소상공인공제부금 (노란우산공제)",
	"퇴직연금세액공제", "연금계좌세액공제", "사업자 등록번호", "상호", "수입금액 구분코드",
	"업종 코드", "사업 형태", "기장 의무", "경비율",
	"수입금액", "일반", "자가", "일반(기본)", "자가(초과)",
}

// CurrencyFields are the subset of Fields normalized to bare digit strings
// before upload.
var CurrencyFields = map[string]bool{
	"중간예납세액":               true,
	"원천징수세액":               true,
	"국민연금보험료":              true,
	"개인연금저축":               true,
	"소기업소상공인공제부금 (노란우산공제)": true,
	"퇴직연금세액공제":             true,
	"연금계좌세액공제":             true,
	"수입금액":                 true,
}

// Header is the sheet header row: file identity columns followed by the
// extraction schema.
func Header() []string {
	h := []string{"파일이름", "행번호"}
	return append(h, Fields...)
}

// Prompt builds the extraction instruction sent alongside each PDF. The
// model is asked for a JSON array with one object per business-income row,
// common fields copied into every object, and masked identity fields left
// blank.
func Prompt() string {
	example := jsonExample()
	var b strings.Builder
	b.WriteString("## 역할\n")
	b.WriteString("당신은 주어진 문서 전체를 종합적으로 분석하여, 여러 다른 위치와 형식의 표나 텍스트에서 데이터를 정확히 추출하고 구조화된 JSON으로 변환하는 OCR 전문가입니다.\n\n")
	b.WriteString("## 작업 순서\n\n")
	b.WriteString("### 1단계: 전체 문서에서 단일 값 필드 스캔\n")
	b.WriteString("먼저 문서 전체를 스캔하여 주로 한 번만 나타나는 값들(성명, 생년월일, 안내유형, 기장의무, 중간예납세액, 원천징수세액, 국민연금보험료 등)을 찾습니다.\n\n")
	b.WriteString("### 2단계: 사업소득 표의 모든 행 찾기\n")
	b.WriteString("'사업장별 수입금액' 또는 유사한 표에서 모든 행을 찾아주세요. 각 행은 하나의 사업소득 항목을 나타내며, 빈 행이나 누락된 행이 없도록 주의깊게 확인해주세요.\n\n")
	b.WriteString("### 3단계: 각 행별 JSON 객체 생성\n")
	b.WriteString("사업소득 표의 각 행마다 별도의 JSON 객체를 생성하고, 1단계에서 찾은 모든 공통 데이터를 동일하게 복사합니다.\n\n")
	b.WriteString("### 4단계: 완전한 JSON 배열 생성\n")
	b.WriteString("모든 사업소득 행이 포함되어야 하며, 각 객체는 모든 필드를 포함해야 합니다. 값이 없는 필드는 \"N/A\" 또는 빈 문자열로 설정합니다.\n\n")
	b.WriteString("## 중요 지침\n")
	b.WriteString("- \"성명\", \"생년월일\", \"사업자 등록번호\", \"상호\"는 개인정보 보호 때문에 일부러 마스킹처리했습니다. 값이 없습니다. 그냥 빈칸으로 두세요.\n")
	b.WriteString("- 절대로 데이터를 누락하지 마세요.\n")
	b.WriteString("- 하나의 문서에 여러 사업소득이 있다면, 그 수만큼 JSON 객체가 생성되어야 합니다.\n\n")
	b.WriteString("### 추출할 항목\n")
	b.WriteString(strings.Join(Fields, ", "))
	b.WriteString("\n\n### 출력 형식 (여러 행이 있을 경우의 예시)\n")
	b.WriteString(example)
	b.WriteString("\n\n반드시 JSON 배열 형태로만 응답하고, 다른 설명은 추가하지 마세요.\n")
	return b.String()
}

func jsonExample() string {
	obj := func(value string) string {
		parts := make([]string, len(Fields))
		for i, f := range Fields {
			parts[i] = fmt.Sprintf("    %q: %q", f, value)
		}
		return "  {\n" + strings.Join(parts, ",\n") + "\n  }"
	}
	return "[\n" + obj("값") + ",\n" + obj("값2") + "\n]"
}
