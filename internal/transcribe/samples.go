package transcribe

// sampleConsultations are the canned transcripts returned by the mock
// transcriber.
var sampleConsultations = []string{
	"의사: 안녕하세요, 오늘 어떤 증상으로 오셨나요?\n환자: 며칠 전부터 목이 아프고 기침이 나요. 열도 조금 있는 것 같고요.\n의사: 언제부터 증상이 시작되었나요?\n환자: 3일 전부터요. 처음에는 목만 살짝 아팠는데 점점 심해지고 있어요.\n의사: 다른 증상은 없으신가요? 두통이나 근육통 같은?\n환자: 어제부터 몸이 좀 무거운 느낌이 들어요. 그리고 가끔 오한이 들기도 하고요.\n의사: 알겠습니다. 목을 한번 확인해보겠습니다. 입을 크게 벌려주세요.\n환자: 네.\n의사: 목이 많이 부어있고 빨갛네요. 림프절도 조금 부어있습니다. 감기 초기 증상으로 보입니다.",
	"의사: 혈압 측정 결과가 나왔습니다. 140/90으로 조금 높은 편이네요.\n환자: 높은 편인가요? 평소에도 그런지 잘 모르겠어요.\n의사: 정상 혈압은 120/80 미만이므로 조금 높습니다. 평소 운동을 하시나요?\n환자: 요즘에는 거의 안 해요. 회사 일이 바빠서 운동할 시간이 없어요.\n의사: 짠 음식을 자주 드시는 편인가요?\n환자: 아무래도 외식을 자주 하다 보니 짠 편일 것 같아요.\n의사: 가족력은 어떻게 되시나요? 부모님 중에 고혈압이 있으신 분이 계신가요?\n환자: 아버지가 고혈압으로 약을 드시고 계세요.\n의사: 그렇다면 더욱 주의가 필요하겠네요. 생활습관 개선과 함께 약물 치료를 고려해볼 필요가 있습니다.",
	"환자: 무릎이 아파서 왔어요. 계단 오르내릴 때 특히 심해요.\n의사: 언제부터 아프셨나요?\n환자: 한 달 정도 된 것 같아요. 처음에는 가볍게 생각했는데 점점 심해지네요.\n의사: 어떤 상황에서 가장 아프신가요?\n환자: 아침에 일어날 때랑 오래 앉아있다가 일어날 때 심해요. 그리고 계단 내려갈 때도 아파요.\n의사: 무릎에 붓기나 열감은 없으신가요?\n환자: 붓기는 잘 모르겠는데, 가끔 무릎이 뜨거운 느낌이 들어요.\n의사: X-ray 촬영을 해보겠습니다. 관절염 초기 증상일 수 있어요.\n환자: 관절염인가요? 나이가 아직 많지 않은데...\n의사: 관절염은 나이와 상관없이 올 수 있습니다. 정확한 진단을 위해 검사를 진행해보죠.",
}
