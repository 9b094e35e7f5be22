package templates

import "resume-rewrite-service/internal/domain/model"

// DefaultTemplates returns the built-in reference templates used when no
// search backend is configured or the backend comes back empty.
func DefaultTemplates() []model.Document {
	return []model.Document{
		{
			Title:   "软件工程师简历模板",
			Content: "姓名：[姓名]\n联系方式：[电话] | [邮箱]\n\n技术技能：\n- 编程语言：Python, Java, JavaScript\n- 框架：Flask, Spring Boot, React\n- 工具：Git, Docker, Kubernetes\n\n工作经验：\n1. [公司名称] - [职位]\n   [日期] - [日期]\n   - 开发并维护核心服务\n   - 优化系统性能，提高响应速度\n   - 参与技术方案设计\n\n教育背景：\n[学校] - [学位]\n[专业], [毕业年份]",
		},
		{
			Title:   "数据分析师简历模板",
			Content: "姓名：[姓名]\n联系方式：[电话] | [邮箱]\n\n技术技能：\n- 数据分析：Python, R, SQL\n- 可视化：Tableau, PowerBI\n- 工具：Excel, Pandas, NumPy\n\n工作经验：\n1. [公司名称] - [职位]\n   [日期] - [日期]\n   - 分析用户行为数据，提供业务洞察\n   - 构建数据模型和报表\n   - 开发自动化分析流程\n\n教育背景：\n[学校] - [学位]\n[专业], [毕业年份]",
		},
		{
			Title:   "产品经理简历模板",
			Content: "姓名：[姓名]\n联系方式：[电话] | [邮箱]\n\n核心能力：\n- 产品规划和路线图设计\n- 用户研究和需求分析\n- 数据驱动决策\n\n工作经验：\n1. [公司名称] - [职位]\n   [日期] - [日期]\n   - 负责产品从构思到发布的全过程\n   - 与设计和开发团队紧密合作\n   - 分析用户反馈持续优化产品\n\n教育背景：\n[学校] - [学位]\n[专业], [毕业年份]",
		},
	}
}
