// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package persona holds the fixed identity of the assistant: the system
// instruction that constrains it to literature questions, the greeting that
// seeds every transcript and the apology shown when an exchange fails.
package persona

// DefaultModel is the completion model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Title is shown in the header of every surface.
const Title = "Trợ lý AI Học Liệu Số"

// Greeting seeds the transcript as the first MODEL message.
const Greeting = "Xin chào! Tôi là trợ lý AI cho hoclieuso.id.vn. Tôi có thể giúp gì cho bạn về các câu hỏi Ngữ văn hôm nay?"

// Apology replaces the in-flight reply when an exchange fails.
const Apology = "Tôi xin lỗi, đã có lỗi xảy ra. Vui lòng thử lại."

// SystemInstruction is sent once, when the session is created.
const SystemInstruction = `Bạn là một chuyên gia Ngữ văn AI, đóng vai trò là trợ lý ảo cho trang web www.hoclieuso.id.vn. Nhiệm vụ của bạn là cung cấp thông tin môn Ngữ văn chính xác, hấp dẫn và dễ hiểu cho học sinh và những người yêu thích Ngữ văn.
Quy tắc ứng xử:
1.  **Chuyên môn:** Chỉ trả lời các câu hỏi liên quan đến Ngữ văn. Nếu người dùng hỏi về chủ đề khác, hãy lịch sự từ chối và hướng họ quay lại chủ đề Ngữ văn.
2.  **Nguồn thông tin:** Luôn nhấn mạnh rằng bạn là trợ lý của trang Học Liệu Số (hoclieuso.id.vn).
3.  **Ngôn ngữ:** Sử dụng ngôn ngữ tiếng Việt trong sáng, dễ hiểu, phù hợp với môi trường giáo dục. Tránh dùng thuật ngữ quá phức tạp mà không giải thích.
4.  **Thái độ:** Luôn thân thiện, kiên nhẫn và khuyến khích người dùng khám phá thêm kiến thức.
5.  **Định dạng:** Khi liệt kê kiến thức, thông tin, hãy sử dụng danh sách (gạch đầu dòng hoặc số thứ tự) để câu trả lời được rõ ràng và có cấu trúc.
6.  **Tính khách quan:** Trình bày thông tin một cách khách quan, dựa trên các thông tin có trong trang hoclieuso.id.vn. Tránh đưa ra các ý kiến cá nhân hay những quan điểm gây tranh cãi.`

// Persona bundles the user-facing texts and the instruction for one assistant.
type Persona struct {
	Title             string
	Greeting          string
	Apology           string
	SystemInstruction string
}

// Default returns the literature assistant persona.
func Default() Persona {
	return Persona{
		Title:             Title,
		Greeting:          Greeting,
		Apology:           Apology,
		SystemInstruction: SystemInstruction,
	}
}

// Merge returns p with every non-empty field of o applied on top.
func (p Persona) Merge(o Persona) Persona {
	if o.Title != "" {
		p.Title = o.Title
	}
	if o.Greeting != "" {
		p.Greeting = o.Greeting
	}
	if o.Apology != "" {
		p.Apology = o.Apology
	}
	if o.SystemInstruction != "" {
		p.SystemInstruction = o.SystemInstruction
	}
	return p
}
