package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/scoring"
	"github.com/zsyp1996/childrenlanguagescreeningline-bot/internal/session"
)

const (
	msgBackHint = "輸入「返回」可中途退出篩檢。"

	msgOverCeiling = "本篩檢僅適用於三歲以下兒童，若您的孩子超過 36 個月，建議聯絡語言治療師進行進一步評估。\n\n輸入「返回」回到主選單。"

	msgNoCoverage = "無法找到適合此年齡的篩檢題目，請確認題庫設定是否正確。\n\n輸入「返回」回到主選單。"

	msgConfigError = "❌ 題庫設定有誤，無法繼續本次篩檢，請聯絡管理員。\n\n輸入「返回」回到主選單。"

	msgAmbiguous = "❌無法判斷回應，請再試一次。"

	msgNextItem = "了解，現在進入下一題。"

	msgGroupAdvance = "這一組全部通過，進入更進階的題組。"

	msgGroupRetreat = "接下來換一組較基礎的題目。"
)

// unavailableMessage picks the apology for a classifier outage. All
// variants invite the caregiver to resend the same answer; none of them
// touch session state.
func unavailableMessage(reason string) string {
	switch reason {
	case "rate-limit":
		return "⏳ 目前使用人數較多，系統暫時忙碌中，請稍候片刻再傳送一次您的回答。"
	case "auth":
		return "🙇 系統設定暫時出現問題，我們正在處理，請稍後再傳送一次您的回答。"
	default:
		return "🙇 抱歉，系統暫時無法判斷您的回答，請稍後再傳送一次。"
	}
}

// formatQuestion renders the item under the session cursor, 1-based.
func formatQuestion(s *session.Session) string {
	item, ok := s.CurrentItem()
	if !ok {
		return ""
	}
	return fmt.Sprintf("第 %d 題：%s", s.CurrentIndex+1, item.Text)
}

func beginMessage(months int, s *session.Session) string {
	return fmt.Sprintf("您的孩子目前 %d 個月大，現在開始篩檢。\n\n%s\n\n%s",
		months, formatQuestion(s), msgBackHint)
}

func summaryMessage(composite, receptive, expressive int, band scoring.Band) string {
	return fmt.Sprintf(`✅ 篩檢結束！
綜合得分：%d 分（理解 %d 分／表達 %d 分）
發展判定：%s

請記住，測驗結果僅供參考，若有疑問請聯絡語言治療師。

輸入「返回」回到主選單。`, composite, receptive, expressive, band)
}

// detailReport is the clinician-forwardable record: which items passed
// and failed, in sorted order, plus the group context a therapist needs
// to interpret the composite.
func detailReport(s *session.Session, composite int, band scoring.Band) string {
	passed := append([]string(nil), s.PassedItems...)
	failed := append([]string(nil), s.FailedItems...)
	sort.Strings(passed)
	sort.Strings(failed)

	var b strings.Builder
	fmt.Fprintf(&b, "📋 篩檢紀錄 %s\n", s.ID)
	fmt.Fprintf(&b, "月齡：%d 個月（原始題組：第 %d 組）\n", s.Months, s.OriginalGroup)
	fmt.Fprintf(&b, "綜合得分：%d 分，%s\n", composite, band)
	fmt.Fprintf(&b, "通過題目：%s\n", joinOrDash(passed))
	fmt.Fprintf(&b, "未通過題目：%s", joinOrDash(failed))
	return b.String()
}

func joinOrDash(ids []string) string {
	if len(ids) == 0 {
		return "無"
	}
	return strings.Join(ids, "、")
}

func hintMessage(hint string, s *session.Session) []string {
	return []string{
		hint + "\n請再回覆一次。",
		formatQuestion(s),
	}
}

func advanceMessage(lead string, s *session.Session) string {
	return fmt.Sprintf("%s\n\n%s\n\n%s", lead, formatQuestion(s), msgBackHint)
}
