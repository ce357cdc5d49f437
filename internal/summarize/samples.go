package summarize

import "github.com/jwulff/chartnote/internal/consult"

// sampleNotes are the canned SOAP notes returned by the mock summarizer.
var sampleNotes = []consult.Summary{
	{
		Subjective: "환자는 3일 전부터 시작된 인후통과 기침을 주증상으로 내원하였습니다. 미열 및 오한을 동반하며, 어제부터는 전신 무력감도 호소하고 있습니다. 초기에는 경미한 인후통이었으나 점차 악화되는 양상을 보이고 있습니다.",
		Objective:  "신체검진상 인두 및 편도선의 발적과 부종이 관찰되며, 경부 림프절의 경미한 종대가 촉진됩니다. 체온 37.8°C, 혈압 120/80mmHg, 맥박 88회/분, 호흡수 18회/분으로 측정되었습니다.",
		Assessment: "임상증상 및 신체검진 소견을 종합하면 급성 인두염(Acute pharyngitis)으로 진단됩니다. 바이러스성 감염으로 추정되며, 현재까지는 세균성 감염의 징후는 보이지 않습니다.",
		Plan:       "1. 충분한 휴식과 수분 섭취\n2. 해열진통제 처방 (아세트아미노펜 500mg, 1일 3회)\n3. 양치질 및 따뜻한 소금물 가글링\n4. 증상 악화 시 재내원 권고\n5. 3일 후 경과 관찰을 위한 재방문 예약",
	},
	{
		Subjective: "환자는 혈압 측정 결과 140/90mmHg로 측정되어 내원하였습니다. 평소 운동 부족과 잦은 외식으로 인한 고염분 식사를 하고 있으며, 가족력상 아버지가 고혈압으로 약물 치료 중입니다.",
		Objective:  "혈압 140/90mmHg (정상 범위 초과), 체중 78kg, 신장 170cm (BMI 27.0), 복부 둘레 증가 소견. 기타 심박수, 호흡수는 정상 범위 내입니다.",
		Assessment: "1차성 고혈압(Primary hypertension)으로 진단됩니다. 생활습관 요인(운동 부족, 고염분 식사)과 유전적 요인이 복합적으로 작용한 것으로 판단됩니다.",
		Plan:       "1. 생활습관 개선 교육 (저염식, 규칙적 운동)\n2. 체중 감량 목표 설정 (5-10% 감량)\n3. 혈압약 처방 (ACE 억제제 고려)\n4. 2주 후 혈압 재측정을 위한 재방문\n5. 혈액검사 (콜레스테롤, 혈당 검사) 처방",
	},
	{
		Subjective: "환자는 약 한 달 전부터 시작된 무릎 통증으로 내원하였습니다. 특히 계단 오르내리기, 아침 기상 시, 장시간 앉은 후 일어날 때 통증이 심화됩니다. 간헐적으로 무릎의 열감도 느끼고 있습니다.",
		Objective:  "좌측 무릎 관절의 경미한 부종과 압통이 관찰됩니다. 관절 가동 범위는 정상이나 굴곡 시 경미한 통증을 호소합니다. 보행 시 경미한 파행이 관찰됩니다.",
		Assessment: "임상 증상을 종합하면 초기 무릎 관절염(Early knee osteoarthritis) 또는 연골연화증이 의심됩니다. 정확한 진단을 위해 영상 검사가 필요합니다.",
		Plan:       "1. 무릎 X-ray 촬영 처방\n2. 소염진통제 처방 (이부프로펜 400mg, 1일 2회)\n3. 물리치료 의뢰\n4. 무릎에 무리가 가는 활동 제한\n5. 1주일 후 X-ray 결과 확인을 위한 재방문",
	},
}
