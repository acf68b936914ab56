package bot

// Menu commands matched after trimming whitespace.
const (
	cmdScreen    = "篩檢"
	cmdTips      = "提升"
	cmdTreatment = "我想治療"
	cmdBack      = "返回"
)

const msgWelcome = `👋 歡迎使用兒童語言發展篩檢小幫手！
請輸入以下其中一個選項：
1️⃣「篩檢」：為三歲以下孩子做語言發展篩檢
2️⃣「提升」：查看促進語言發展的小技巧
3️⃣「我想治療」：查詢語言治療資源`

const msgAskBirthDate = `請輸入孩子的出生日期，例如 2023-05-10。
也可以使用民國年，例如 民國112年5月10日。

輸入「返回」可回到主選單。`

const msgBadBirthDate = `抱歉，無法辨識這個日期。
請再輸入一次孩子的出生日期，例如 2023-05-10。`

const msgFutureBirthDate = `這個出生日期在未來，請確認後再輸入一次，例如 2023-05-10。`

const msgTips = `💡 促進語言發展的小技巧：
1. 每天固定時間唸繪本給孩子聽，邊唸邊指圖片。
2. 描述孩子正在做的事情，例如「你在疊積木」。
3. 孩子發出聲音或說話時，立刻回應並延伸他的話。
4. 減少 3C 螢幕時間，增加面對面的互動遊戲。

輸入「返回」回到主選單。`

const msgTreatment = `🏥 語言治療資源：
各縣市的醫院復健科與語言治療所都提供兒童語言評估與治療。
您可以撥打各縣市的早期療育通報轉介中心專線，或洽詢住家附近的醫療院所復健科。

輸入「返回」回到主選單。`

const msgBackToMenu = "已回到主選單。\n\n" + msgWelcome

const msgUseBack = "輸入「返回」可回到主選單。"

const msgDateUnavailable = "🙇 抱歉，系統暫時忙碌中，請稍後再輸入一次出生日期。"
