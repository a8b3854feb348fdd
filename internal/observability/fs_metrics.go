package observability

// ObserveAttachment records one attachment filesystem operation. bytesWritten
// only applies to store/replace; pass 0 for removals.
func (p *Prom) ObserveAttachment(op string, bytesWritten int, err error) {
	result := "ok"

	if err != nil {
		result = "error"
	}

	p.AttachmentOps.WithLabelValues(op, result).Inc()

	if err == nil && bytesWritten > 0 {
		p.AttachmentBytes.Add(float64(bytesWritten))
	}
}
