package service

import "strings"

const expertSystemPrompt = "あなたは料理レシピの専門家です。回答には必ず日本語で答えてください。"

const validationPrompt = `提供された文書の内容が料理のレシピに関する内容かどうかを判断してください。

判断基準:
- 料理名、材料、作り方、調理時間などが含まれているか
- 料理に関する情報が主な内容となっているか

reasonフィールドには必ず日本語で詳しい理由を記載してください。

%s`

const validationSchema = `次のJSON形式のみで回答してください:
{"isRecipe": boolean, "reason": string}
- isRecipe: レシピ内容かどうかの判定
- reason: 判定理由の詳細説明（空にしないこと）`

const recipePrompt = `提供された文書からレシピ情報を正確に抽出してください。

抽出する情報：
- レシピ名（料理の名前）
- 材料リスト（材料名、数量、単位）

注意事項：
- 数量は数値として正確に抽出してください
- 単位は日本語で記載してください（グラム、個、本、カップ、大さじ、小さじなど）
- 文書に記載されている情報のみを抽出してください

%s

以下の文書からレシピ情報を抽出してください：

%s`

const recipeSchema = `次のJSON形式のみで回答してください:
{"name": string, "ingredients": [{"name": string, "unit": string, "quantity": number}]}
- name: レシピ名・料理名（空にしないこと）
- ingredients: 材料リスト。quantityは0以上の数値`

const cookingTimeSystemPrompt = `あなたは料理レシピの調理時間を分析する専門家です。
提供された文書から料理にかかる時間（分）を抽出してください。
sumMinutesツールを使って合計時間を計算してください。

注意事項：
- 「約10分」のような表現は10として扱ってください
- 「5〜10分」のような範囲は最大値（10）を使用してください
- 時間が明記されていない場合は、一般的な調理時間を推定してください

最終的な回答は次のJSON形式のみで返してください:
{"totalMinutes": number, "durations": [{"phrase": string, "minutes": number}]}`

const cookingTimePrompt = `以下の文書から調理時間を抽出し、sumMinutesツールを使って合計時間を計算してください：

%s`

const contextLabel = "【文書内容】\n"

// buildContext labels each chunk and joins them with a blank line
func buildContext(chunks []string) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = contextLabel + c
	}
	return strings.Join(parts, "\n\n")
}
