package workflow

// Grader prompt templates. Slot values are substituted with fmt.Sprintf; the
// wording is deliberately stable since the graders key on the exact JSON
// contract described in each template.

const relevanceGraderPrompt = `You are a grader assessing relevance of a retrieved document to a user question. If the document contains keywords related to the user question, grade it as relevant. It does not need to be a stringent test. The goal is to filter out erroneous retrievals.
Give a binary score 'yes' or 'no' score to indicate whether the document is relevant to the question.
Provide the binary score as a JSON with a single key 'score' and no preamble or explanation.

Here is the retrieved document:

%s

Here is the user question: %s`

const groundingGraderPrompt = `You are a grader assessing whether an answer is grounded in / supported by a set of facts. Give a binary score 'yes' or 'no' score to indicate whether the answer is grounded in / supported by a set of facts. Provide the binary score as a JSON with a single key 'score' and no preamble or explanation.

Here are the facts:
-------
%s
-------
Here is the answer: %s`

const evaluatorPrompt = `You are an evaluator assessing whether the generated content is correct and relevant to the given question.
Provide a JSON response with the following keys:
'score': A binary score 'yes' or 'no' indicating whether the content is correct and relevant.
'feedback': A brief explanation of your evaluation, including any issues or improvements needed.

Here is the generated content:
-------
%s
-------
Here is the question: %s
-------
Here are the relevant documents: %s`

const rewriterPrompt = `You a question re-writer that converts an input question to a better version that is optimized for vectorstore retrieval. Look at the input and try to reason about the underlying semantic intent / meaning.
Here is the initial question: %s
Formulate an improved question.`

// Generation prompts. The service rewrites Chinese-market resumes, so the
// instructions stay in Chinese like the rest of the prompt surface.

const generateSystemPrompt = `你是一个专业的简历修改专家，擅长根据用户的要求修改简历，要求有教育背景、专业，项目经验，技能特长，自我评价，实习经历，竞赛经历，荣誉奖项，其他经历。`

const generateBarePrompt = `%s

简历内容:
%s

额外指导：请优化简历，使其更加专业、清晰和有针对性。`

const generateAugmentedPrompt = `请根据以下简历内容和参考模板，创建一份格式规范、内容专业的优化版简历。

任务要求:
1. 保留原始简历的核心信息和经验
2. 利用参考模板的结构和格式，但不要复制其具体内容
3. 突出显示与%s相关的技能和经验
4. 使用清晰的标题和段落结构
5. 确保最终简历完整且格式一致，方便直接使用
6. 不要使用markdown标记，使用纯文本格式

原始简历:
%s

参考模板:
%s

最终输出应该是一份完整的、优化后的简历，而不是修改建议。`

const emptyGenerationFallback = `优化后的简历:

%s

【注意：AI未能生成优化内容，这是原始简历】`

// Retrieval query fallbacks, applied after sanitization.
const (
	emptyQueryFallback = "简历模板"
	longQueryFallback  = "简历 职位 技能 经验"
	maxQueryRunes      = 100
)

// maxPromptTokens caps the generation prompt. Past it the reference
// templates are dropped so the resume itself always fits.
const maxPromptTokens = 6000
