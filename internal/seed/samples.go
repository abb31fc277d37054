package seed

const (
	novelName = "长河"
	storyName = "一夜"
)

type seedDocument struct {
	name    string
	content string
}

type seedVolume struct {
	name     string
	chapters []seedDocument
}

var novelVolumes = []seedVolume{
	{
		name: "卷1 源头",
		chapters: []seedDocument{
			{name: "第1章 渡口", content: "清晨的渡口没有人。\n\n老船工把缆绳解开，河水推着船慢慢离岸。"},
			{name: "第2章 来客", content: "午后来了一个背着包袱的年轻人，他问去对岸要多少钱。"},
		},
	},
	{
		name: "卷2 中游",
		chapters: []seedDocument{
			{name: "第3章 洪水", content: "那年夏天雨下了四十天，河水漫过了堤。"},
		},
	},
}

var novelSettings = map[string][]seedDocument{
	"大纲": {
		{name: "总纲", content: "# 总纲\n\n- 第一代：渡口\n- 第二代：洪水\n- 第三代：大桥"},
	},
	"角色": {
		{name: "老船工", content: "# 老船工\n\n姓陈，六十岁，**不爱说话**。"},
		{name: "年轻人", content: "# 年轻人\n\n来历不明，左手有一道疤。"},
	},
}

const storyText = `# 雪

雪下了一整夜。

## 敲门

快到天亮的时候，有人敲门。

## 重逢

门外站着十年没见的哥哥。
`

var sampleInspirations = []struct {
	title   string
	content string
}{
	{title: "河上的桥", content: "最后一卷可以写大桥通车那天，渡口停摆。"},
	{title: "疤", content: "年轻人的疤和洪水有关？"},
}
