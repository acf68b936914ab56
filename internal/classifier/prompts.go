package classifier

import (
	"fmt"

	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/itembank"
)

// systemPrompt frames every call: the model is a screening assistant for
// caregivers and answers in Traditional Chinese.
const systemPrompt = "你是一個語言篩檢助手，負責回答家長的問題與記錄兒童的語言發展情況，請提供幫助。請使用繁體中文回答。"

// Category tokens the judgment reply must start with.
const (
	tokenPass    = "符合"
	tokenFail    = "不符合"
	tokenUnclear = "不清楚"
)

// judgePrompt asks for exactly one category token. The wording keeps the
// original instrument's three-way rubric: unclear is for confusion or
// insufficient information, not for answers that merely miss the
// criterion.
func judgePrompt(item itembank.Item, reply string) string {
	return fmt.Sprintf(`題目：%s
提示：%s
通過標準：%s
使用者回應：%s

這是兒童語言篩檢的一道測驗題，請根據「題目」、「提示」、「通過標準」來判斷使用者的回答是否符合「通過標準」：
1. 不清楚：使用者的回答表示對題目疑惑，如使用者說「不知道」「不清楚」，或你認為使用者回答仍不足以判斷。請只回應「不清楚」。
2. 符合：使用者的回答符合「通過標準」(不需字句相同)。請只回應「符合」。
3. 不符合：使用者的回答並非不清楚且未達到「通過標準」。請只回應「不符合」。

**請務必只回應「符合」、「不符合」或「不清楚」，不要任何額外文字、符號或解釋！**`,
		item.Text, item.Hint, item.Criterion, reply)
}

// hintPrompt asks for a short, plain restatement of the item-bank hint.
func hintPrompt(item itembank.Item) string {
	return fmt.Sprintf("請基於以下提示使用30字內的解釋回應使用者，要簡單平易近人不要列點：%s", item.Hint)
}

// datePrompt asks for a normalized Gregorian date. The caregiver may
// write a ROC-calendar date or free-form text.
func datePrompt(raw string) string {
	return fmt.Sprintf("將這個日期(無論西元或民國年)轉為西元 YYYY-MM-DD 格式：%s", raw)
}
